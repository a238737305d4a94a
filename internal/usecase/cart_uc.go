package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/nutristore/internal/domain"
)

// VariantRef identifica una variante tal como llega del cliente; el peso se
// valida recién al resolver.
type VariantRef struct {
	ProductID string
	Flavor    string
	Weight    string
}

// CartUC muta el carrito de cada sesión. Todas las operaciones de una misma
// sesión se serializan; sesiones distintas no comparten lock.
//
// Cualquier precondición fallida (entrada mal formada, variante inexistente,
// stock insuficiente) descarta la mutación y devuelve el carrito previo sin
// error. Sólo los errores del CartStore llegan al llamador.
type CartUC struct {
	Resolver *VariantResolver
	Pricer   Pricer
	Carts    domain.CartStore

	once  sync.Once
	locks *SessionLocks
}

func (uc *CartUC) lock(sessionID string) func() {
	uc.once.Do(func() {
		if uc.locks == nil {
			uc.locks = NewSessionLocks()
		}
	})
	return uc.locks.Lock(sessionID)
}

func (uc *CartUC) Show(ctx context.Context, sessionID string) (domain.CartSummary, error) {
	unlock := uc.lock(sessionID)
	defer unlock()
	c, err := uc.Carts.Load(ctx, sessionID)
	if err != nil {
		return uc.Pricer.Summary(domain.Cart{}), err
	}
	return uc.Pricer.Summary(c), nil
}

// Add suma qty unidades (1 si viene vacío) de la variante. Si la línea existe
// el total se acumula: total += unitario*qty.
func (uc *CartUC) Add(ctx context.Context, sessionID string, ref VariantRef, qty string) (domain.CartSummary, error) {
	return uc.mutate(ctx, sessionID, "add", ref, func(c domain.Cart, v *domain.Variant) (domain.Cart, error) {
		n, err := parseQty(qty, 1)
		if err != nil {
			return c, err
		}
		if n < 1 {
			return c, fmt.Errorf("cantidad %d: %w", n, domain.ErrInvalidArgument)
		}
		unit := uc.Pricer.UnitPrice(*v)
		if i := c.IndexOf(v.ID); i >= 0 {
			l := &c.Lines[i]
			if l.Quantity+n > v.StockQuantity {
				return c, fmt.Errorf("%d+%d > %d: %w", l.Quantity, n, v.StockQuantity, domain.ErrStockExceeded)
			}
			l.Quantity += n
			l.UnitPrice = unit
			l.LineTotal = uc.Pricer.Accumulate(l.LineTotal, unit, n)
			return c, nil
		}
		if n > v.StockQuantity {
			return c, fmt.Errorf("%d > %d: %w", n, v.StockQuantity, domain.ErrStockExceeded)
		}
		c.Lines = append(c.Lines, domain.CartLine{
			ProductID:          v.ProductID,
			VariantID:          v.ID,
			Flavor:             v.Flavor,
			PackageWeightGrams: v.PackageWeightGrams,
			Quantity:           n,
			UnitPrice:          unit,
			LineTotal:          uc.Pricer.LineTotal(unit, n),
		})
		return c, nil
	})
}

func (uc *CartUC) Remove(ctx context.Context, sessionID string, ref VariantRef) (domain.CartSummary, error) {
	return uc.mutate(ctx, sessionID, "remove", ref, func(c domain.Cart, v *domain.Variant) (domain.Cart, error) {
		return removeLine(c, v.ID), nil
	})
}

// SetQuantity reemplaza la cantidad y recalcula el total desde cero:
// total = unitario*qty. qty <= 0 equivale a Remove.
func (uc *CartUC) SetQuantity(ctx context.Context, sessionID string, ref VariantRef, qty string) (domain.CartSummary, error) {
	return uc.mutate(ctx, sessionID, "set", ref, func(c domain.Cart, v *domain.Variant) (domain.Cart, error) {
		i := c.IndexOf(v.ID)
		if i < 0 {
			return c, fmt.Errorf("variante %d fuera del carrito: %w", v.ID, domain.ErrNotResolved)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return c, fmt.Errorf("cantidad %q: %w", qty, domain.ErrInvalidArgument)
		}
		if n <= 0 {
			return removeLine(c, v.ID), nil
		}
		if n > v.StockQuantity {
			return c, fmt.Errorf("%d > %d: %w", n, v.StockQuantity, domain.ErrStockExceeded)
		}
		unit := uc.Pricer.UnitPrice(*v)
		c.Lines[i].Quantity = n
		c.Lines[i].UnitPrice = unit
		c.Lines[i].LineTotal = uc.Pricer.LineTotal(unit, n)
		return c, nil
	})
}

// Drain entrega el carrito de la sesión a fn bajo el lock de la sesión y lo
// vacía si fn termina sin error.
func (uc *CartUC) Drain(ctx context.Context, sessionID string, fn func(domain.Cart) error) error {
	unlock := uc.lock(sessionID)
	defer unlock()
	c, err := uc.Carts.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if c.Empty() {
		return domain.ErrEmptyCart
	}
	if err := fn(c.Clone()); err != nil {
		return err
	}
	return uc.Carts.Delete(ctx, sessionID)
}

func (uc *CartUC) mutate(ctx context.Context, sessionID, action string, ref VariantRef, apply func(domain.Cart, *domain.Variant) (domain.Cart, error)) (domain.CartSummary, error) {
	unlock := uc.lock(sessionID)
	defer unlock()

	cur, err := uc.Carts.Load(ctx, sessionID)
	if err != nil {
		return uc.Pricer.Summary(domain.Cart{}), err
	}
	v, err := uc.Resolver.Resolve(ctx, ref.ProductID, ref.Flavor, ref.Weight)
	if err != nil {
		dropped(sessionID, action, ref, err)
		return uc.Pricer.Summary(cur), nil
	}
	next, err := apply(cur.Clone(), v)
	if err != nil {
		dropped(sessionID, action, ref, err)
		return uc.Pricer.Summary(cur), nil
	}
	if err := uc.Carts.Save(ctx, sessionID, next); err != nil {
		return uc.Pricer.Summary(cur), err
	}
	return uc.Pricer.Summary(next), nil
}

func removeLine(c domain.Cart, variantID int) domain.Cart {
	out := domain.Cart{}
	for _, l := range c.Lines {
		if l.VariantID != variantID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

func dropped(sessionID, action string, ref VariantRef, err error) {
	log.Debug().Err(err).
		Str("session", sessionID).
		Str("action", action).
		Str("product", ref.ProductID).
		Str("flavor", ref.Flavor).
		Str("weight", ref.Weight).
		Msg("mutación de carrito descartada")
}
