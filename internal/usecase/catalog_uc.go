package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/phenrril/nutristore/internal/domain"
)

// CatalogUC resuelve listados de catálogo y opciones del selector de
// variantes. Es de sólo lectura y no toma locks propios.
type CatalogUC struct {
	Products domain.CatalogRepo
	Pricer   Pricer

	group singleflight.Group
}

func (uc *CatalogUC) Get(ctx context.Context, productID string) (*domain.Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, fmt.Errorf("product id vacío: %w", domain.ErrInvalidArgument)
	}
	return uc.Products.FindByID(ctx, id)
}

func (uc *CatalogUC) Categories(ctx context.Context) ([]string, error) {
	return uc.Products.DistinctCategories(ctx)
}

// Filter proyecta cada producto con su variante elegida, ordena y pagina.
// Devuelve también el total antes de paginar.
func (uc *CatalogUC) Filter(ctx context.Context, f domain.FilterCriteria) ([]domain.ProductProjection, int64, error) {
	f.Sort = domain.ParseSortMode(string(f.Sort))
	if f.ByName() {
		f.Category, f.Weight, f.Taste = "", 0, ""
	}
	products, err := uc.query(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.ProductProjection, 0, len(products))
	for _, p := range products {
		if !matchesProduct(p, f) {
			continue
		}
		v, ok := uc.selectVariant(p.Variants, f)
		if !ok {
			continue
		}
		out = append(out, domain.ProductProjection{Product: p, Variant: v, UnitPrice: uc.Pricer.UnitPrice(v)})
	}
	sortProjections(out, f.Sort)

	total := int64(len(out))
	return paginate(out, f.Page, f.PageSize), total, nil
}

// query agrupa consultas idénticas concurrentes en una sola llamada al repo.
// El resultado se comparte entre llamadores y no debe mutarse.
func (uc *CatalogUC) query(ctx context.Context, f domain.FilterCriteria) ([]domain.Product, error) {
	key := fmt.Sprintf("%s|%d|%s|%s", strings.ToLower(f.Category), f.Weight, strings.ToLower(f.Taste), strings.ToLower(f.NameQuery))
	res, err, _ := uc.group.Do(key, func() (any, error) {
		return uc.Products.QueryProducts(ctx, domain.FilterCriteria{
			Category:  f.Category,
			Weight:    f.Weight,
			Taste:     f.Taste,
			NameQuery: f.NameQuery,
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Product), nil
}

func matchesProduct(p domain.Product, f domain.FilterCriteria) bool {
	if f.ByName() {
		return matchesName(p.Name, f.NameQuery)
	}
	if !f.AllCategories() && !strings.EqualFold(strings.TrimSpace(p.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	return true
}

// matchesName acepta el texto como substring o, si no, cuando todas sus
// palabras aparecen en el nombre en cualquier orden.
func matchesName(name, query string) bool {
	n := strings.ToLower(name)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || strings.Contains(n, q) {
		return true
	}
	words := strings.Fields(q)
	for _, w := range words {
		if !strings.Contains(n, w) {
			return false
		}
	}
	return len(words) > 0
}

func matchesVariant(v domain.Variant, f domain.FilterCriteria) bool {
	if f.Weight > 0 && v.PackageWeightGrams != f.Weight {
		return false
	}
	if t := strings.TrimSpace(f.Taste); t != "" && !strings.EqualFold(strings.TrimSpace(v.Flavor), t) {
		return false
	}
	return true
}

// selectVariant elige la variante más barata que cumple el filtro; empata por
// ID menor. En modo destacados, las destacadas van primero.
func (uc *CatalogUC) selectVariant(vs []domain.Variant, f domain.FilterCriteria) (domain.Variant, bool) {
	var best domain.Variant
	var bestPrice float64
	found := false
	for _, v := range vs {
		if !matchesVariant(v, f) {
			continue
		}
		price := uc.Pricer.UnitPrice(v)
		if !found || betterVariant(v, price, best, bestPrice, f.Sort == domain.SortHighlighted) {
			best, bestPrice, found = v, price, true
		}
	}
	return best, found
}

func betterVariant(v domain.Variant, price float64, best domain.Variant, bestPrice float64, preferHighlighted bool) bool {
	if preferHighlighted && v.Highlighted != best.Highlighted {
		return v.Highlighted
	}
	if price != bestPrice {
		return price < bestPrice
	}
	return v.ID < best.ID
}

func sortProjections(list []domain.ProductProjection, mode domain.SortMode) {
	switch mode {
	case domain.SortPriceAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].UnitPrice < list[j].UnitPrice })
	case domain.SortPriceDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].UnitPrice > list[j].UnitPrice })
	case domain.SortCaloriesAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Product.Calories < list[j].Product.Calories })
	case domain.SortCaloriesDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Product.Calories > list[j].Product.Calories })
	case domain.SortHighlighted:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Variant.Highlighted && !list[j].Variant.Highlighted })
	}
}

func paginate(list []domain.ProductProjection, page, size int) []domain.ProductProjection {
	if size <= 0 {
		return list
	}
	if page <= 0 {
		page = 1
	}
	from := (page - 1) * size
	if from >= len(list) {
		return []domain.ProductProjection{}
	}
	to := from + size
	if to > len(list) {
		to = len(list)
	}
	return list[from:to]
}

// --- Opciones del selector ---

// WeightsForFlavor devuelve los pesos del sabor, ascendentes y sin repetir.
func (uc *CatalogUC) WeightsForFlavor(ctx context.Context, productID, flavor string) ([]int, error) {
	vs, err := uc.Products.VariantsForProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, err
	}
	fl := strings.TrimSpace(flavor)
	seen := map[int]struct{}{}
	out := []int{}
	for _, v := range vs {
		if strings.TrimSpace(v.Flavor) != fl {
			continue
		}
		if _, ok := seen[v.PackageWeightGrams]; ok {
			continue
		}
		seen[v.PackageWeightGrams] = struct{}{}
		out = append(out, v.PackageWeightGrams)
	}
	sort.Ints(out)
	return out, nil
}

// FlavorsExcept devuelve los sabores del producto sin repetir, en orden de
// aparición, salvo el de la variante excludeVariantID.
func (uc *CatalogUC) FlavorsExcept(ctx context.Context, productID string, excludeVariantID int) ([]string, error) {
	vs, err := uc.Products.VariantsForProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, err
	}
	excluded, hasExcluded := "", false
	for _, v := range vs {
		if v.ID == excludeVariantID {
			excluded, hasExcluded = strings.TrimSpace(v.Flavor), true
			break
		}
	}
	return distinctFlavors(vs, func(f string) bool { return hasExcluded && f == excluded }), nil
}

// FlavorsForWeight devuelve los sabores disponibles para un peso.
func (uc *CatalogUC) FlavorsForWeight(ctx context.Context, productID, weight string) ([]string, error) {
	grams, err := parseWeight(weight)
	if err != nil {
		return nil, err
	}
	vs, err := uc.Products.VariantsByWeight(ctx, strings.TrimSpace(productID), grams)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return distinctFlavors(vs, func(string) bool { return false }), nil
}

func distinctFlavors(vs []domain.Variant, skip func(string) bool) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range vs {
		f := strings.TrimSpace(v.Flavor)
		if f == "" || skip(f) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
