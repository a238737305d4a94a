package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phenrril/nutristore/internal/domain"
)

// VariantResolver looks up the exact variant for a (product, flavor, weight)
// triple. It never caches: each call reflects the repository at that moment.
type VariantResolver struct {
	Catalog domain.CatalogRepo
}

func (r *VariantResolver) Resolve(ctx context.Context, productID, flavor, weight string) (*domain.Variant, error) {
	grams, err := parseWeight(weight)
	if err != nil {
		return nil, err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return nil, fmt.Errorf("product id vacío: %w", domain.ErrInvalidArgument)
	}
	v, err := r.Catalog.GetVariant(ctx, pid, strings.TrimSpace(flavor), grams)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s/%s/%dg: %w", pid, flavor, grams, domain.ErrNotResolved)
		}
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s/%s/%dg: %w", pid, flavor, grams, domain.ErrNotResolved)
	}
	return v, nil
}

func parseWeight(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("peso %q: %w", s, domain.ErrInvalidArgument)
	}
	if n <= 0 {
		return 0, fmt.Errorf("peso %d: %w", n, domain.ErrInvalidArgument)
	}
	return n, nil
}

// parseQty parses a quantity. Blank input yields def.
func parseQty(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cantidad %q: %w", s, domain.ErrInvalidArgument)
	}
	return n, nil
}
