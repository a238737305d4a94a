// Package memory implementa los repositorios en memoria. Se usa con
// CATALOG_BACKEND=memory y en los tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/phenrril/nutristore/internal/domain"
)

type CatalogRepo struct {
	mu       sync.RWMutex
	products []domain.Product
	variants []domain.Variant
}

func NewCatalogRepo() *CatalogRepo { return &CatalogRepo{} }

// Put agrega o reemplaza un producto. Sus variantes se guardan aparte; el
// orden de inserción es el orden natural del catálogo.
func (r *CatalogRepo) Put(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vs := p.Variants
	p.Variants = nil
	replaced := false
	for i := range r.products {
		if r.products[i].ID == p.ID {
			r.products[i] = p
			replaced = true
		}
	}
	if !replaced {
		r.products = append(r.products, p)
	}
	for _, v := range vs {
		v.ProductID = p.ID
		r.variants = append(r.variants, v)
	}
}

// PutVariant agrega una fila de variante o reemplaza la de mismo ID.
func (r *CatalogRepo) PutVariant(v domain.Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.variants {
		if r.variants[i].ID == v.ID {
			r.variants[i] = v
			return
		}
	}
	r.variants = append(r.variants, v)
}

// AdjustStock suma delta al stock de la variante. Falla si quedaría negativo.
func (r *CatalogRepo) AdjustStock(variantID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.variants {
		if r.variants[i].ID != variantID {
			continue
		}
		if r.variants[i].StockQuantity+delta < 0 {
			return domain.ErrStockExceeded
		}
		r.variants[i].StockQuantity += delta
		return nil
	}
	return domain.ErrNotFound
}

func (r *CatalogRepo) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *CatalogRepo) GetVariant(_ context.Context, productID, flavor string, weightGrams int) (*domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.Variant
	for i := range r.variants {
		v := r.variants[i]
		if v.ProductID != productID || v.Flavor != flavor || v.PackageWeightGrams != weightGrams {
			continue
		}
		if best == nil || v.ID < best.ID {
			best = &v
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

func (r *CatalogRepo) VariantsForProduct(_ context.Context, productID string) ([]domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.variantsOf(productID, func(domain.Variant) bool { return true }), nil
}

func (r *CatalogRepo) VariantsByWeight(_ context.Context, productID string, weightGrams int) ([]domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.variantsOf(productID, func(v domain.Variant) bool { return v.PackageWeightGrams == weightGrams }), nil
}

func (r *CatalogRepo) QueryProducts(_ context.Context, f domain.FilterCriteria) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range r.products {
		if !f.ByName() && !f.AllCategories() && !strings.EqualFold(p.Category, strings.TrimSpace(f.Category)) {
			continue
		}
		p.Variants = r.variantsOf(p.ID, func(domain.Variant) bool { return true })
		out = append(out, p)
	}
	return out, nil
}

func (r *CatalogRepo) FindByID(_ context.Context, productID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == productID {
			p.Variants = r.variantsOf(p.ID, func(domain.Variant) bool { return true })
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CatalogRepo) DistinctCategories(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	cats := []string{}
	for _, p := range r.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	sort.Strings(cats)
	return cats, nil
}

func (r *CatalogRepo) variantsOf(productID string, keep func(domain.Variant) bool) []domain.Variant {
	out := []domain.Variant{}
	for _, v := range r.variants {
		if v.ProductID == productID && keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
