package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/nutristore/internal/domain"
	"github.com/phenrril/nutristore/internal/usecase"
)

type Server struct {
	mux        *http.ServeMux
	catalog    *usecase.CatalogUC
	cart       *usecase.CartUC
	orders     *usecase.OrderUC
	sessionKey []byte
}

func New(c *usecase.CatalogUC, cart *usecase.CartUC, o *usecase.OrderUC, sessionKey []byte) http.Handler {
	if len(sessionKey) == 0 {
		sessionKey = []byte("dev-insecure")
	}
	s := &Server{mux: http.NewServeMux(), catalog: c, cart: cart, orders: o, sessionKey: sessionKey}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/products", s.apiProducts)
	// GET /api/products/{id} · /api/products/{id}/weights · /api/products/{id}/flavors
	s.mux.HandleFunc("/api/products/", s.apiProductByID)
	s.mux.HandleFunc("/api/categories", s.apiCategories)
	s.mux.HandleFunc("/api/catalog/export.xlsx", s.apiCatalogExport)

	s.mux.HandleFunc("/cart", s.handleCart)
	s.mux.HandleFunc("/cart/add", s.handleCartAdd)
	s.mux.HandleFunc("/cart/update", s.handleCartUpdate)
	s.mux.HandleFunc("/cart/remove", s.handleCartRemove)
	s.mux.HandleFunc("/cart/checkout", s.handleCartCheckout)
}

// filterFromQuery arma el criterio de filtrado. Un peso mal formado es error
// del cliente, nunca se ignora.
func filterFromQuery(r *http.Request) (domain.FilterCriteria, error) {
	qv := r.URL.Query()
	f := domain.FilterCriteria{
		Category:  qv.Get("category"),
		Sort:      domain.ParseSortMode(qv.Get("sort")),
		Taste:     strings.TrimSpace(qv.Get("taste")),
		NameQuery: qv.Get("q"),
	}
	if w := strings.TrimSpace(qv.Get("weight")); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			return f, domain.ErrInvalidArgument
		}
		f.Weight = n
	}
	f.Page, _ = strconv.Atoi(qv.Get("page"))
	f.PageSize, _ = strconv.Atoi(qv.Get("page_size"))
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return f, nil
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, "weight", 400)
		return
	}
	list, total, err := s.catalog.Filter(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": total})
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/"), "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	qv := r.URL.Query()
	switch {
	case len(parts) == 1:
		p, err := s.catalog.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, 200, p)
	case len(parts) == 2 && parts[1] == "weights":
		ws, err := s.catalog.WeightsForFlavor(r.Context(), id, qv.Get("flavor"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, 200, map[string]any{"weights": ws})
	case len(parts) == 2 && parts[1] == "flavors":
		var (
			fl  []string
			err error
		)
		if wt := qv.Get("weight"); wt != "" {
			fl, err = s.catalog.FlavorsForWeight(r.Context(), id, wt)
		} else {
			exclude := -1
			if ex := strings.TrimSpace(qv.Get("exclude")); ex != "" {
				if exclude, err = strconv.Atoi(ex); err != nil {
					http.Error(w, "exclude", 400)
					return
				}
			}
			fl, err = s.catalog.FlavorsExcept(r.Context(), id, exclude)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, 200, map[string]any{"flavors": fl})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"categories": cats})
}

// --- Carrito ---
// Las mutaciones siempre responden 200 con el carrito resultante; una
// mutación descartada devuelve el carrito sin cambios.

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	id, ok := s.readSession(r)
	if !ok {
		writeJSON(w, 200, domain.CartSummary{Lines: []domain.CartLine{}})
		return
	}
	sum, err := s.cart.Show(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, 200, sum)
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(sid string, ref usecase.VariantRef) (domain.CartSummary, error) {
		return s.cart.Add(r.Context(), sid, ref, r.FormValue("qty"))
	})
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(sid string, ref usecase.VariantRef) (domain.CartSummary, error) {
		return s.cart.SetQuantity(r.Context(), sid, ref, r.FormValue("qty"))
	})
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	s.cartMutation(w, r, func(sid string, ref usecase.VariantRef) (domain.CartSummary, error) {
		return s.cart.Remove(r.Context(), sid, ref)
	})
}

func (s *Server) cartMutation(w http.ResponseWriter, r *http.Request, fn func(string, usecase.VariantRef) (domain.CartSummary, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form", 400)
		return
	}
	sid := s.ensureSession(w, r)
	ref := usecase.VariantRef{
		ProductID: r.FormValue("product"),
		Flavor:    r.FormValue("flavor"),
		Weight:    r.FormValue("weight"),
	}
	sum, err := fn(sid, ref)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, 200, sum)
}

func (s *Server) handleCartCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "form", 400)
		return
	}
	sid, ok := s.readSession(r)
	if !ok {
		http.Error(w, "vacio", 409)
		return
	}
	o, err := s.orders.Checkout(r.Context(), sid, usecase.Buyer{Email: r.FormValue("email"), Name: r.FormValue("name")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, 201, o)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return 400
	case errors.Is(err, domain.ErrNotFound):
		return 404
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrStockExceeded):
		return 409
	}
	return 500
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		log.Error().Err(err).Str("req_id", RequestIDFrom(r.Context())).Str("path", r.URL.Path).Msg("request")
	}
	writeJSON(w, code, map[string]any{"error": http.StatusText(code)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
