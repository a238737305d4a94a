package usecase

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phenrril/nutristore/internal/domain"
)

type PriceMode int

const (
	// PriceModeFloat usa float64 y redondeo half-up a centavos.
	PriceModeFloat PriceMode = iota
	// PriceModeDecimal hace los mismos pasos con decimales exactos. Puede
	// diferir en un centavo de PriceModeFloat en los medios centavos.
	PriceModeDecimal
)

func ParsePriceMode(s string) PriceMode {
	if strings.EqualFold(strings.TrimSpace(s), "decimal") {
		return PriceModeDecimal
	}
	return PriceModeFloat
}

func (m PriceMode) String() string {
	if m == PriceModeDecimal {
		return "decimal"
	}
	return "float"
}

// Pricer aplica descuento y redondeo. El unitario se redondea una vez por
// resolución, los totales de línea no se redondean y el total del carrito
// se redondea de nuevo.
type Pricer struct {
	Mode PriceMode
}

// UnitPrice devuelve el unitario con descuento redondeado a centavos.
func (p Pricer) UnitPrice(v domain.Variant) float64 {
	pct := v.DiscountPercent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if p.Mode == PriceModeDecimal {
		d := decimal.NewFromFloat(v.UnitPrice).
			Mul(decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(pct)).Div(decimal.NewFromInt(100))))
		return d.Round(2).InexactFloat64()
	}
	return round2(v.UnitPrice * (1 - float64(pct)/100))
}

// LineTotal es el total de línea desde cero, usado al fijar cantidad.
func (p Pricer) LineTotal(unit float64, qty int) float64 {
	if p.Mode == PriceModeDecimal {
		return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(qty))).InexactFloat64()
	}
	return unit * float64(qty)
}

// Accumulate suma unit*delta al total existente, usado al agregar.
func (p Pricer) Accumulate(total, unit float64, delta int) float64 {
	if p.Mode == PriceModeDecimal {
		return decimal.NewFromFloat(total).
			Add(decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(delta)))).InexactFloat64()
	}
	return total + unit*float64(delta)
}

// Total suma las líneas y redondea a centavos.
func (p Pricer) Total(lines []domain.CartLine) float64 {
	if p.Mode == PriceModeDecimal {
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(decimal.NewFromFloat(l.LineTotal))
		}
		return sum.Round(2).InexactFloat64()
	}
	sum := 0.0
	for _, l := range lines {
		sum += l.LineTotal
	}
	return round2(sum)
}

// Summary arma la vista del carrito que se devuelve al cliente.
func (p Pricer) Summary(c domain.Cart) domain.CartSummary {
	items := 0
	for _, l := range c.Lines {
		items += l.Quantity
	}
	lines := c.Clone().Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return domain.CartSummary{Lines: lines, TotalPrice: p.Total(c.Lines), Items: items}
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
