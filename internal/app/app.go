package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/nutristore/internal/adapters/httpserver"
	"github.com/phenrril/nutristore/internal/adapters/repo/memory"
	"github.com/phenrril/nutristore/internal/adapters/repo/postgres"
	"github.com/phenrril/nutristore/internal/adapters/session"
	"github.com/phenrril/nutristore/internal/domain"
	"github.com/phenrril/nutristore/internal/usecase"
)

type App struct {
	Config    Config
	DB        *gorm.DB
	CatalogUC *usecase.CatalogUC
	CartUC    *usecase.CartUC
	OrderUC   *usecase.OrderUC
	Carts     *session.MemStore

	seed func(context.Context) error
}

// NewApp arma los casos de uso. Con db == nil usa los repositorios en memoria.
func NewApp(cfg Config, db *gorm.DB) (*App, error) {
	var (
		catalog   domain.CatalogRepo
		orders    domain.OrderRepo
		customers domain.CustomerRepo
	)
	a := &App{Config: cfg, DB: db}
	if db == nil {
		mc := memory.NewCatalogRepo()
		catalog, orders, customers = mc, memory.NewOrderRepo(mc), memory.NewCustomerRepo()
		a.seed = func(ctx context.Context) error { return seedCatalog(ctx, mc, mc.Put) }
	} else {
		pr := postgres.NewProductRepo(db)
		catalog, orders, customers = pr, postgres.NewOrderRepo(db), postgres.NewCustomerRepo(db)
		a.seed = func(ctx context.Context) error {
			return seedCatalog(ctx, pr, func(p domain.Product) {
				for i := range p.Variants {
					p.Variants[i].ID = 0
				}
				if err := pr.Save(ctx, &p); err != nil {
					log.Error().Err(err).Str("product", p.ID).Msg("seed")
				}
			})
		}
	}

	pricer := usecase.Pricer{Mode: usecase.ParsePriceMode(cfg.PriceMode)}
	a.Carts = session.NewMemStore(cfg.CartTTL)
	a.CatalogUC = &usecase.CatalogUC{Products: catalog, Pricer: pricer}
	a.CartUC = &usecase.CartUC{
		Resolver: &usecase.VariantResolver{Catalog: catalog},
		Pricer:   pricer,
		Carts:    a.Carts,
	}
	a.OrderUC = &usecase.OrderUC{Orders: orders, Customers: customers, Carts: a.CartUC, Pricer: pricer}
	log.Info().Str("backend", cfg.CatalogBackend).Str("price_mode", pricer.Mode.String()).Msg("app lista")
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.CartUC, a.OrderUC, []byte(a.Config.SessionKey))
}

// MigrateAndSeed crea el esquema (sólo postgres) y carga el catálogo de
// ejemplo si está vacío y SEED_CATALOG lo pide o el backend es memoria.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.AutoMigrate(
			&domain.Product{}, &domain.Variant{}, &domain.Order{}, &domain.OrderItem{}, &domain.Customer{},
		); err != nil {
			return err
		}
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_product_weight ON variants (product_id, package_weight_grams)").Error
		_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at, id)").Error
	}
	if a.DB == nil || a.Config.SeedCatalog {
		return a.seed(ctx)
	}
	return nil
}
