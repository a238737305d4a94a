package domain

import "context"

// CartLine es una foto: LineTotal se calcula al mutar la línea y no se
// actualiza si después cambia el precio de la variante.
type CartLine struct {
	ProductID          string  `json:"product_id"`
	VariantID          int     `json:"variant_id"`
	Flavor             string  `json:"flavor"`
	PackageWeightGrams int     `json:"package_weight_grams"`
	Quantity           int     `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	LineTotal          float64 `json:"line_total"`
}

type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Clone copia las líneas; el resultado no comparte memoria con c.
func (c Cart) Clone() Cart {
	if len(c.Lines) == 0 {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func (c Cart) IndexOf(variantID int) int {
	for i, l := range c.Lines {
		if l.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

type CartSummary struct {
	Lines      []CartLine `json:"lines"`
	TotalPrice float64    `json:"total_price"`
	Items      int        `json:"items"`
}

// CartStore guarda un carrito por sesión. Load de una sesión desconocida
// devuelve un carrito vacío.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
}
