package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// BlendComponent es un lote tostado que participa en la mezcla con un porcentaje.
type BlendComponent struct {
	StockItemID string          `json:"stock_item_id"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// Weight devuelve los kg que la componente aporta a una salida dada.
func (c BlendComponent) Weight(output decimal.Decimal) decimal.Decimal {
	return c.Percentage.Mul(output).Div(hundred)
}

// BlendEvent mezcla lotes tostados en un nuevo ítem; la salida es igual a Σ entradas.
type BlendEvent struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	BlendDate         time.Time        `json:"blend_date"`
	Components        []BlendComponent `json:"components"`
	OutputStockItemID string           `json:"output_stock_item_id"`
	OutputWeight      decimal.Decimal  `json:"output_weight_kg"`
	RecordedCostPerKg decimal.Decimal  `json:"recorded_cost_per_kg"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

func (b *BlendEvent) RecordID() string        { return b.ID }
func (b *BlendEvent) SetRecordID(id string)   { b.ID = id }
func (b *BlendEvent) BusinessDate() time.Time { return b.BlendDate }

func (b *BlendEvent) Attrs() map[string]string {
	return map[string]string{
		"name":                 b.Name,
		"output_stock_item_id": b.OutputStockItemID,
	}
}

// Validate verifica que los porcentajes sumen exactamente 100.
func (b *BlendEvent) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	if len(b.Components) < 2 {
		return domain.NewValidationError("components", "la mezcla necesita al menos dos componentes")
	}
	sum := decimal.Zero
	seen := make(map[string]struct{}, len(b.Components))
	for _, c := range b.Components {
		if c.StockItemID == "" {
			return domain.NewValidationError("components.stock_item_id", "es requerido")
		}
		if _, dup := seen[c.StockItemID]; dup {
			return domain.NewValidationError("components.stock_item_id", "ítem repetido %s", c.StockItemID)
		}
		seen[c.StockItemID] = struct{}{}
		if err := requirePositive("components.percentage", c.Percentage); err != nil {
			return err
		}
		sum = sum.Add(c.Percentage)
	}
	if !sum.Equal(hundred) {
		return domain.NewValidationError("components.percentage", "los porcentajes suman %s, deben sumar 100", sum.String())
	}
	if b.OutputStockItemID == "" {
		return domain.NewValidationError("output_stock_item_id", "es requerido")
	}
	if _, self := seen[b.OutputStockItemID]; self {
		return domain.NewValidationError("output_stock_item_id", "la salida no puede ser también componente")
	}
	if err := requirePositive("output_weight_kg", b.OutputWeight); err != nil {
		return err
	}
	return requireNonNegative("recorded_cost_per_kg", b.RecordedCostPerKg)
}
