package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Status     OrderStatus `gorm:"type:varchar(30);index" json:"status"`
	CustomerID *uuid.UUID  `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Email      string      `gorm:"size:140" json:"email"`
	Name       string      `gorm:"size:140" json:"name"`
	Items      []OrderItem `json:"items"`
	Total      float64     `gorm:"type:decimal(12,2)" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID            uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID          string    `gorm:"size:64;index" json:"product_id"`
	VariantID          int       `gorm:"index" json:"variant_id"`
	Flavor             string    `gorm:"size:80" json:"flavor"`
	PackageWeightGrams int       `json:"package_weight_grams"`
	Qty                int       `gorm:"not null" json:"qty"`
	UnitPrice          float64   `gorm:"type:decimal(12,2)" json:"unit_price"`
	LineTotal          float64   `gorm:"type:decimal(12,2)" json:"line_total"`
}

type OrderRepo interface {
	// Create guarda la orden y descuenta el stock en una sola operación.
	// Devuelve ErrStockExceeded si alguna variante ya no alcanza.
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}
