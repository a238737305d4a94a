package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/nutristore/internal/domain"
)

func TestCart_ShowEmpty(t *testing.T) {
	uc := newCartUC(newCatalog(chocProduct(50)))
	s, err := uc.Show(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
	assert.Equal(t, 0.0, s.TotalPrice)
	assert.Equal(t, 0, s.Items)
}

func TestCart_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))

	s, err := uc.Add(ctx, "s1", chocRef, "1")
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Quantity)
	assert.InDelta(t, 90.0, s.Lines[0].LineTotal, 1e-9)
	assert.InDelta(t, 90.0, s.TotalPrice, 1e-9)
	assert.Equal(t, "P1", s.Lines[0].ProductID)
	assert.Equal(t, 1, s.Lines[0].VariantID)

	s, err = uc.Remove(ctx, "s1", chocRef)
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
	assert.Equal(t, 0.0, s.TotalPrice)
}

func TestCart_AddDefaultsToOne(t *testing.T) {
	uc := newCartUC(newCatalog(chocProduct(50)))
	s, err := uc.Add(context.Background(), "s1", chocRef, "")
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Quantity)
}

func TestCart_AddMergesAdditively(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))

	_, err := uc.Add(ctx, "s1", chocRef, "2")
	require.NoError(t, err)
	s, err := uc.Add(ctx, "s1", chocRef, "1")
	require.NoError(t, err)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 3, s.Lines[0].Quantity)
	assert.InDelta(t, 270.0, s.Lines[0].LineTotal, 1e-9)
}

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	p := chocProduct(50)
	p.Variants = append(p.Variants, domain.Variant{ID: 2, Flavor: "Vanilla", PackageWeightGrams: 900, UnitPrice: 80, StockQuantity: 5})
	uc := newCartUC(newCatalog(p))

	_, err := uc.Add(ctx, "s1", VariantRef{ProductID: "P1", Flavor: "Vanilla", Weight: "900"}, "1")
	require.NoError(t, err)
	s, err := uc.Add(ctx, "s1", chocRef, "1")
	require.NoError(t, err)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, 2, s.Lines[0].VariantID)
	assert.Equal(t, 1, s.Lines[1].VariantID)
	assert.InDelta(t, 170.0, s.TotalPrice, 1e-9)
}

func TestCart_MergeOverStockLimitIsNoop(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))

	_, err := uc.Add(ctx, "s1", chocRef, "40")
	require.NoError(t, err)
	s, err := uc.Add(ctx, "s1", chocRef, "20")
	require.NoError(t, err)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 40, s.Lines[0].Quantity)
}

func TestCart_SilentNoops(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(5)))
	_, err := uc.Add(ctx, "s1", chocRef, "2")
	require.NoError(t, err)
	before, err := uc.Show(ctx, "s1")
	require.NoError(t, err)

	cases := []struct {
		name string
		run  func() (domain.CartSummary, error)
	}{
		{"add over stock", func() (domain.CartSummary, error) { return uc.Add(ctx, "s1", chocRef, "4") }},
		{"add non numeric qty", func() (domain.CartSummary, error) { return uc.Add(ctx, "s1", chocRef, "two") }},
		{"add zero qty", func() (domain.CartSummary, error) { return uc.Add(ctx, "s1", chocRef, "0") }},
		{"add negative qty", func() (domain.CartSummary, error) { return uc.Add(ctx, "s1", chocRef, "-1") }},
		{"add malformed weight", func() (domain.CartSummary, error) {
			return uc.Add(ctx, "s1", VariantRef{ProductID: "P1", Flavor: "Choc", Weight: "heavy"}, "1")
		}},
		{"add unknown flavor", func() (domain.CartSummary, error) {
			return uc.Add(ctx, "s1", VariantRef{ProductID: "P1", Flavor: "Mint", Weight: "900"}, "1")
		}},
		{"remove unknown product", func() (domain.CartSummary, error) {
			return uc.Remove(ctx, "s1", VariantRef{ProductID: "P9", Flavor: "Choc", Weight: "900"})
		}},
		{"set over stock", func() (domain.CartSummary, error) { return uc.SetQuantity(ctx, "s1", chocRef, "6") }},
		{"set non numeric", func() (domain.CartSummary, error) { return uc.SetQuantity(ctx, "s1", chocRef, "x") }},
		{"set blank", func() (domain.CartSummary, error) { return uc.SetQuantity(ctx, "s1", chocRef, " ") }},
		{"set malformed weight", func() (domain.CartSummary, error) {
			return uc.SetQuantity(ctx, "s1", VariantRef{ProductID: "P1", Flavor: "Choc", Weight: ""}, "1")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.run()
			require.NoError(t, err)
			assert.Equal(t, before, got)
			after, err := uc.Show(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestCart_SetQuantityOnMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))
	s, err := uc.SetQuantity(ctx, "s1", chocRef, "3")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
}

func TestCart_SetQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))
	_, err := uc.Add(ctx, "s1", chocRef, "2")
	require.NoError(t, err)

	s, err := uc.SetQuantity(ctx, "s1", chocRef, "0")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
}

func TestCart_RemoveAbsentLineIsNoop(t *testing.T) {
	ctx := context.Background()
	p := chocProduct(50)
	p.Variants = append(p.Variants, domain.Variant{ID: 2, Flavor: "Vanilla", PackageWeightGrams: 900, UnitPrice: 80, StockQuantity: 5})
	uc := newCartUC(newCatalog(p))
	_, err := uc.Add(ctx, "s1", chocRef, "1")
	require.NoError(t, err)

	s, err := uc.Remove(ctx, "s1", VariantRef{ProductID: "P1", Flavor: "Vanilla", Weight: "900"})
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].VariantID)
}

// Mismo estado inicial, precio cambiado: add acumula sobre el total previo,
// set recalcula desde cero.
func TestCart_AddIsAdditiveSetOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newCatalog(chocProduct(50))
	uc := newCartUC(repo)

	for _, sid := range []string{"add", "set"} {
		s, err := uc.Add(ctx, sid, chocRef, "2")
		require.NoError(t, err)
		require.InDelta(t, 180.0, s.TotalPrice, 1e-9)
	}

	// sin cambio de precio ambos caminos coinciden
	same := newCartUC(newCatalog(chocProduct(50)))
	_, _ = same.Add(ctx, "a", chocRef, "2")
	_, _ = same.Add(ctx, "b", chocRef, "2")
	sa, _ := same.Add(ctx, "a", chocRef, "1")
	sb, _ := same.SetQuantity(ctx, "b", chocRef, "3")
	assert.InDelta(t, 270.0, sa.TotalPrice, 1e-9)
	assert.InDelta(t, 270.0, sb.TotalPrice, 1e-9)

	repo.PutVariant(domain.Variant{ID: 1, ProductID: "P1", Flavor: "Choc", PackageWeightGrams: 900, UnitPrice: 200, DiscountPercent: 10, StockQuantity: 50})

	added, err := uc.Add(ctx, "add", chocRef, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, added.Lines[0].Quantity)
	assert.InDelta(t, 360.0, added.Lines[0].LineTotal, 1e-9)

	set, err := uc.SetQuantity(ctx, "set", chocRef, "3")
	require.NoError(t, err)
	assert.Equal(t, 3, set.Lines[0].Quantity)
	assert.InDelta(t, 540.0, set.Lines[0].LineTotal, 1e-9)
}

func TestCart_LineTotalIsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newCatalog(chocProduct(50))
	uc := newCartUC(repo)
	_, err := uc.Add(ctx, "s1", chocRef, "1")
	require.NoError(t, err)

	repo.PutVariant(domain.Variant{ID: 1, ProductID: "P1", Flavor: "Choc", PackageWeightGrams: 900, UnitPrice: 500, StockQuantity: 50})
	s, err := uc.Show(ctx, "s1")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, s.TotalPrice, 1e-9)
}

func TestCart_StockBound(t *testing.T) {
	ctx := context.Background()
	const stock = 7
	uc := newCartUC(newCatalog(chocProduct(stock)))
	ops := []struct {
		set bool
		qty string
	}{
		{false, "3"}, {false, "3"}, {false, "3"}, {true, "8"}, {true, "7"}, {false, "1"}, {true, "2"}, {false, "5"}, {false, "1"},
	}
	for i, op := range ops {
		var s domain.CartSummary
		var err error
		if op.set {
			s, err = uc.SetQuantity(ctx, "s1", chocRef, op.qty)
		} else {
			s, err = uc.Add(ctx, "s1", chocRef, op.qty)
		}
		require.NoError(t, err)
		for _, l := range s.Lines {
			assert.LessOrEqual(t, l.Quantity, stock, "step %d", i)
		}
	}
}

func TestCart_ConcurrentAddsSameSessionRespectStock(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(20)))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Add(ctx, "s1", chocRef, "1")
		}()
	}
	wg.Wait()

	s, err := uc.Show(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 20, s.Lines[0].Quantity)
	assert.InDelta(t, 1800.0, s.TotalPrice, 1e-6)
}

func TestCart_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(5)))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = uc.Add(ctx, fmt.Sprintf("s%d", i), chocRef, "5")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		s, err := uc.Show(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		require.Len(t, s.Lines, 1)
		assert.Equal(t, 5, s.Lines[0].Quantity)
	}
}

func TestCart_DrainClearsOnSuccess(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))
	_, err := uc.Add(ctx, "s1", chocRef, "2")
	require.NoError(t, err)

	var seen domain.Cart
	require.NoError(t, uc.Drain(ctx, "s1", func(c domain.Cart) error {
		seen = c
		return nil
	}))
	require.Len(t, seen.Lines, 1)

	s, err := uc.Show(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.Lines)
}

func TestCart_DrainKeepsCartOnError(t *testing.T) {
	ctx := context.Background()
	uc := newCartUC(newCatalog(chocProduct(50)))
	_, err := uc.Add(ctx, "s1", chocRef, "2")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = uc.Drain(ctx, "s1", func(domain.Cart) error { return boom })
	assert.ErrorIs(t, err, boom)

	s, err := uc.Show(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, s.Lines, 1)
}

func TestCart_DrainEmpty(t *testing.T) {
	uc := newCartUC(newCatalog(chocProduct(50)))
	err := uc.Drain(context.Background(), "s1", func(domain.Cart) error { return nil })
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (domain.Cart, error) { return domain.Cart{}, f.err }
func (f failingStore) Save(context.Context, string, domain.Cart) error  { return f.err }
func (f failingStore) Delete(context.Context, string) error             { return f.err }

func TestCart_StoreErrorsSurface(t *testing.T) {
	boom := errors.New("store down")
	uc := &CartUC{Resolver: &VariantResolver{Catalog: newCatalog(chocProduct(5))}, Carts: failingStore{err: boom}}

	_, err := uc.Show(context.Background(), "s1")
	assert.ErrorIs(t, err, boom)
	_, err = uc.Add(context.Background(), "s1", chocRef, "1")
	assert.ErrorIs(t, err, boom)
}
