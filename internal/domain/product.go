package domain

import (
	"context"
	"strings"
	"time"
)

type Product struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	Name      string    `gorm:"size:180;not null" json:"name"`
	Category  string    `gorm:"size:100;index" json:"category"`
	ImageRef  string    `gorm:"size:255" json:"image_ref"`
	Calories  float64   `gorm:"type:decimal(8,2);default:0" json:"calories"`
	Carbs     float64   `gorm:"type:decimal(8,2);default:0" json:"carbs"`
	Protein   float64   `gorm:"type:decimal(8,2);default:0" json:"protein"`
	Fat       float64   `gorm:"type:decimal(8,2);default:0" json:"fat"`
	Variants  []Variant `json:"variants"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Variant es un SKU de un Product. Se espera una sola fila por
// (ProductID, Flavor, PackageWeightGrams).
type Variant struct {
	ID                 int     `gorm:"primaryKey" json:"id"`
	ProductID          string  `gorm:"size:64;index" json:"product_id"`
	Flavor             string  `gorm:"size:80" json:"flavor"`
	PackageWeightGrams int     `gorm:"not null" json:"package_weight_grams"`
	UnitPrice          float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountPercent    int     `gorm:"default:0" json:"discount_percent"`
	StockQuantity      int     `gorm:"default:0" json:"stock_quantity"`
	Highlighted        bool    `gorm:"default:false" json:"highlighted"`
}

type SortMode string

const (
	SortDefault      SortMode = ""
	SortPriceAsc     SortMode = "price_asc"
	SortPriceDesc    SortMode = "price_desc"
	SortCaloriesAsc  SortMode = "calories_asc"
	SortCaloriesDesc SortMode = "calories_desc"
	SortHighlighted  SortMode = "highlighted"
)

// ParseSortMode traduce el parámetro de orden; valores desconocidos dan
// SortDefault.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortPriceAsc, SortPriceDesc, SortCaloriesAsc, SortCaloriesDesc, SortHighlighted:
		return m
	}
	return SortDefault
}

type FilterCriteria struct {
	Category  string
	Sort      SortMode
	Weight    int
	Taste     string
	NameQuery string
	Page      int
	PageSize  int
}

// AllCategories indica si no hay filtro de categoría ("" o "all").
func (f FilterCriteria) AllCategories() bool {
	c := strings.TrimSpace(f.Category)
	return c == "" || strings.EqualFold(c, "all")
}

// ByName indica si hay búsqueda por nombre, que anula los demás filtros.
func (f FilterCriteria) ByName() bool {
	return strings.TrimSpace(f.NameQuery) != ""
}

// ProductProjection es un producto con la variante elegida para mostrarlo.
type ProductProjection struct {
	Product   Product `json:"product"`
	Variant   Variant `json:"variant"`
	UnitPrice float64 `json:"unit_price"`
}

type CatalogRepo interface {
	// GetVariant devuelve la variante de la terna (la de ID menor si hay
	// duplicados) o ErrNotFound.
	GetVariant(ctx context.Context, productID, flavor string, weightGrams int) (*Variant, error)
	VariantsForProduct(ctx context.Context, productID string) ([]Variant, error)
	VariantsByWeight(ctx context.Context, productID string, weightGrams int) ([]Variant, error)
	// QueryProducts devuelve los productos en orden natural con sus variantes.
	// Puede prefiltrar por categoría o nombre.
	QueryProducts(ctx context.Context, f FilterCriteria) ([]Product, error)
	FindByID(ctx context.Context, productID string) (*Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}
