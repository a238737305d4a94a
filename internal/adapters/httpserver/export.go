package httpserver

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/nutristore/internal/domain"
)

var exportHeader = []any{"Producto", "Categoría", "Sabor", "Peso (g)", "Precio", "Descuento %", "Precio final", "Stock", "Kcal"}

// apiCatalogExport descarga como XLSX la lista de precios del listado
// filtrado, con la variante elegida de cada producto.
func (s *Server) apiCatalogExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, "weight", 400)
		return
	}
	f.Page, f.PageSize = 0, 0
	list, _, err := s.catalog.Filter(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	x, err := priceListXLSX(list)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer func() { _ = x.Close() }()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=lista-precios.xlsx")
	if err := x.Write(w); err != nil {
		log.Error().Err(err).Msg("export xlsx")
	}
}

func priceListXLSX(list []domain.ProductProjection) (*excelize.File, error) {
	x := excelize.NewFile()
	sheet := "Precios"
	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := x.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, p := range list {
		row := []any{
			p.Product.Name,
			p.Product.Category,
			p.Variant.Flavor,
			p.Variant.PackageWeightGrams,
			p.Variant.UnitPrice,
			p.Variant.DiscountPercent,
			p.UnitPrice,
			p.Variant.StockQuantity,
			p.Product.Calories,
		}
		if err := x.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	return x, nil
}
