package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/nutristore/internal/domain"
)

type Buyer struct {
	Email string
	Name  string
}

// OrderUC convierte el carrito de una sesión en una orden persistida.
type OrderUC struct {
	Orders    domain.OrderRepo
	Customers domain.CustomerRepo
	Carts     *CartUC
	Pricer    Pricer
}

// Checkout persiste el carrito de la sesión y lo vacía. Si la orden no se
// puede guardar el carrito queda intacto.
func (uc *OrderUC) Checkout(ctx context.Context, sessionID string, b Buyer) (*domain.Order, error) {
	email := strings.ToLower(strings.TrimSpace(b.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("email %q: %w", b.Email, domain.ErrInvalidArgument)
	}
	cust, err := uc.customer(ctx, email, strings.TrimSpace(b.Name))
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = uc.Carts.Drain(ctx, sessionID, func(c domain.Cart) error {
		o := &domain.Order{
			ID:         uuid.New(),
			Status:     domain.OrderStatusPlaced,
			CustomerID: &cust.ID,
			Email:      cust.Email,
			Name:       cust.Name,
			Total:      uc.Pricer.Total(c.Lines),
			CreatedAt:  time.Now(),
		}
		for _, l := range c.Lines {
			o.Items = append(o.Items, domain.OrderItem{
				ID:                 uuid.New(),
				OrderID:            o.ID,
				ProductID:          l.ProductID,
				VariantID:          l.VariantID,
				Flavor:             l.Flavor,
				PackageWeightGrams: l.PackageWeightGrams,
				Qty:                l.Quantity,
				UnitPrice:          l.UnitPrice,
				LineTotal:          l.LineTotal,
			})
		}
		if err := uc.Orders.Create(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("order", order.ID.String()).Str("email", order.Email).Float64("total", order.Total).Int("items", len(order.Items)).Msg("orden creada")
	return order, nil
}

func (uc *OrderUC) customer(ctx context.Context, email, name string) (*domain.Customer, error) {
	c, err := uc.Customers.FindByEmail(ctx, email)
	if err == nil {
		if name != "" && c.Name != name {
			c.Name = name
			if err := uc.Customers.Save(ctx, c); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c = &domain.Customer{ID: uuid.New(), Email: email, Name: name, CreatedAt: time.Now()}
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("order id: %w", domain.ErrInvalidArgument)
	}
	return uc.Orders.FindByID(ctx, id)
}
