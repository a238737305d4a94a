package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/nutristore/internal/domain"
)

type productCounter interface {
	Count(ctx context.Context) (int64, error)
}

func seedCatalog(ctx context.Context, repo productCounter, put func(domain.Product)) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	prods := seedProducts()
	for _, p := range prods {
		put(p)
	}
	log.Info().Int("products", len(prods)).Msg("catálogo de ejemplo cargado")
	return nil
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: "whey-gold", Name: "Whey Protein Gold", Category: "Proteine", ImageRef: "img/whey-gold.jpg", Calories: 120, Carbs: 3, Protein: 24, Fat: 1.5, Variants: []domain.Variant{
			{ID: 1, Flavor: "Cioccolato", PackageWeightGrams: 900, UnitPrice: 39.90, DiscountPercent: 10, StockQuantity: 50, Highlighted: true},
			{ID: 2, Flavor: "Cioccolato", PackageWeightGrams: 2270, UnitPrice: 84.90, DiscountPercent: 0, StockQuantity: 20},
			{ID: 3, Flavor: "Vaniglia", PackageWeightGrams: 900, UnitPrice: 39.90, DiscountPercent: 0, StockQuantity: 35},
		}},
		{ID: "isolate-zero", Name: "Isolate Zero", Category: "Proteine", ImageRef: "img/isolate-zero.jpg", Calories: 95, Carbs: 0.5, Protein: 23, Fat: 0.2, Variants: []domain.Variant{
			{ID: 4, Flavor: "Fragola", PackageWeightGrams: 750, UnitPrice: 44.50, DiscountPercent: 15, StockQuantity: 12},
			{ID: 5, Flavor: "Neutro", PackageWeightGrams: 750, UnitPrice: 42.00, DiscountPercent: 0, StockQuantity: 8},
		}},
		{ID: "creatina-pura", Name: "Creatina Monoidrato", Category: "Integratori", ImageRef: "img/creatina.jpg", Calories: 0, Variants: []domain.Variant{
			{ID: 6, Flavor: "Neutro", PackageWeightGrams: 300, UnitPrice: 19.90, DiscountPercent: 0, StockQuantity: 100},
			{ID: 7, Flavor: "Neutro", PackageWeightGrams: 500, UnitPrice: 29.90, DiscountPercent: 5, StockQuantity: 60},
		}},
		{ID: "barretta-crunch", Name: "Barretta Proteica Crunch", Category: "Snack", ImageRef: "img/barretta.jpg", Calories: 210, Carbs: 18, Protein: 20, Fat: 7, Variants: []domain.Variant{
			{ID: 8, Flavor: "Caramello", PackageWeightGrams: 60, UnitPrice: 2.50, DiscountPercent: 0, StockQuantity: 300, Highlighted: true},
			{ID: 9, Flavor: "Cocco", PackageWeightGrams: 60, UnitPrice: 2.50, DiscountPercent: 20, StockQuantity: 150},
		}},
		{ID: "gainer-mass", Name: "Mass Gainer", Category: "Proteine", ImageRef: "img/gainer.jpg", Calories: 380, Carbs: 60, Protein: 30, Fat: 4, Variants: []domain.Variant{}},
	}
}
