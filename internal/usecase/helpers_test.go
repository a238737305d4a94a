package usecase

import (
	"github.com/phenrril/nutristore/internal/adapters/repo/memory"
	"github.com/phenrril/nutristore/internal/adapters/session"
	"github.com/phenrril/nutristore/internal/domain"
)

var chocRef = VariantRef{ProductID: "P1", Flavor: "Choc", Weight: "900"}

func chocProduct(stock int) domain.Product {
	return domain.Product{ID: "P1", Name: "Whey Choc", Category: "Proteine", Calories: 120, Variants: []domain.Variant{
		{ID: 1, Flavor: "Choc", PackageWeightGrams: 900, UnitPrice: 100, DiscountPercent: 10, StockQuantity: stock},
	}}
}

func newCatalog(products ...domain.Product) *memory.CatalogRepo {
	repo := memory.NewCatalogRepo()
	for _, p := range products {
		repo.Put(p)
	}
	return repo
}

func newCartUC(repo domain.CatalogRepo) *CartUC {
	return &CartUC{
		Resolver: &VariantResolver{Catalog: repo},
		Carts:    session.NewMemStore(0),
	}
}
