package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/nutristore/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create guarda la orden con sus ítems y descuenta stock en la misma
// transacción. El descuento sólo aplica si queda stock suficiente.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range o.Items {
			res := tx.Model(&domain.Variant{}).
				Where("id = ? AND stock_quantity >= ?", it.VariantID, it.Qty).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", it.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("variante %d: %w", it.VariantID, domain.ErrStockExceeded)
			}
		}
		return tx.Create(o).Error
	})
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
