package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/nutristore/internal/domain"
)

type OrderRepo struct {
	mu      sync.Mutex
	catalog *CatalogRepo
	orders  map[uuid.UUID]domain.Order
}

func NewOrderRepo(catalog *CatalogRepo) *OrderRepo {
	return &OrderRepo{catalog: catalog, orders: map[uuid.UUID]domain.Order{}}
}

func (r *OrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if err := r.catalog.AdjustStock(it.VariantID, -it.Qty); err != nil {
			for _, done := range applied {
				_ = r.catalog.AdjustStock(done.VariantID, done.Qty)
			}
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrStockExceeded
			}
			return err
		}
		applied = append(applied, it)
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	r.orders[o.ID] = cp
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

type CustomerRepo struct {
	mu      sync.Mutex
	byEmail map[string]domain.Customer
}

func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{byEmail: map[string]domain.Customer{}}
}

func (r *CustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *CustomerRepo) Save(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Email = strings.ToLower(c.Email)
	r.byEmail[c.Email] = *c
	return nil
}
