package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/nutristore/internal/domain"
)

func TestCatalogRepo_GetVariantLowestID(t *testing.T) {
	r := NewCatalogRepo()
	r.Put(domain.Product{ID: "p", Name: "P"})
	r.PutVariant(domain.Variant{ID: 8, ProductID: "p", Flavor: "Choc", PackageWeightGrams: 900})
	r.PutVariant(domain.Variant{ID: 2, ProductID: "p", Flavor: "Choc", PackageWeightGrams: 900})

	v, err := r.GetVariant(context.Background(), "p", "Choc", 900)
	require.NoError(t, err)
	assert.Equal(t, 2, v.ID)

	_, err = r.GetVariant(context.Background(), "p", "Choc", 500)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRepo_QueryKeepsInsertionOrder(t *testing.T) {
	r := NewCatalogRepo()
	r.Put(domain.Product{ID: "b", Category: "Snack"})
	r.Put(domain.Product{ID: "a", Category: "Proteine", Variants: []domain.Variant{{ID: 1, PackageWeightGrams: 900}}})
	r.Put(domain.Product{ID: "b", Name: "B2", Category: "Snack"})

	all, err := r.QueryProducts(context.Background(), domain.FilterCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "B2", all[0].Name)
	assert.NotNil(t, all[0].Variants)
	assert.Len(t, all[1].Variants, 1)
	assert.Equal(t, "a", all[1].Variants[0].ProductID)

	snacks, err := r.QueryProducts(context.Background(), domain.FilterCriteria{Category: "snack"})
	require.NoError(t, err)
	assert.Len(t, snacks, 1)
}

func TestCatalogRepo_AdjustStock(t *testing.T) {
	r := NewCatalogRepo()
	r.PutVariant(domain.Variant{ID: 1, ProductID: "p", StockQuantity: 2})
	require.NoError(t, r.AdjustStock(1, -2))
	assert.ErrorIs(t, r.AdjustStock(1, -1), domain.ErrStockExceeded)
	assert.ErrorIs(t, r.AdjustStock(9, 1), domain.ErrNotFound)
}
