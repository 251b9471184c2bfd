package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// OriginType etiqueta la variante del origen de un movimiento de inventario.
type OriginType string

const (
	OriginPurchaseReceipt  OriginType = "purchase_receipt"
	OriginRoastOutput      OriginType = "roast_output"
	OriginRoastConsumption OriginType = "roast_consumption"
	OriginBlendOutput      OriginType = "blend_output"
	OriginBlendConsumption OriginType = "blend_consumption"
	OriginSaleConsumption  OriginType = "sale_consumption"
	OriginManualAdjustment OriginType = "manual_adjustment"
)

// Origin es la referencia tipada al evento que causó un movimiento (unión etiquetada).
// Solo los campos de la variante indicada por Type tienen significado:
//
//	purchase_receipt              RefID = orden de compra, LineItemIndex = línea
//	roast_output/roast_consumption RefID = tostión
//	blend_output/blend_consumption RefID = mezcla
//	sale_consumption              RefID = venta
//	manual_adjustment             Reason (obligatorio), UnitCost opcional para entradas
type Origin struct {
	Type          OriginType       `json:"type"`
	RefID         string           `json:"ref_id,omitempty"`
	LineItemIndex int              `json:"line_item_index,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
}

func PurchaseReceipt(purchaseOrderID string, lineItemIndex int) Origin {
	return Origin{Type: OriginPurchaseReceipt, RefID: purchaseOrderID, LineItemIndex: lineItemIndex}
}

func RoastOutput(roastEventID string) Origin {
	return Origin{Type: OriginRoastOutput, RefID: roastEventID}
}

func RoastConsumption(roastEventID string) Origin {
	return Origin{Type: OriginRoastConsumption, RefID: roastEventID}
}

func BlendOutput(blendEventID string) Origin {
	return Origin{Type: OriginBlendOutput, RefID: blendEventID}
}

func BlendConsumption(blendEventID string) Origin {
	return Origin{Type: OriginBlendConsumption, RefID: blendEventID}
}

func SaleConsumption(saleID string) Origin {
	return Origin{Type: OriginSaleConsumption, RefID: saleID}
}

// ManualAdjustment crea un origen de ajuste manual. unitCost puede ser nil.
func ManualAdjustment(reason string, unitCost *decimal.Decimal) Origin {
	return Origin{Type: OriginManualAdjustment, Reason: reason, UnitCost: unitCost}
}

// Inbound indica si la variante corresponde a una entrada de inventario.
func (o Origin) Inbound() bool {
	switch o.Type {
	case OriginPurchaseReceipt, OriginRoastOutput, OriginBlendOutput:
		return true
	}
	return false
}

// Validate comprueba que la variante tenga sus campos obligatorios y nada más.
func (o Origin) Validate() error {
	switch o.Type {
	case OriginPurchaseReceipt:
		if o.RefID == "" {
			return domain.NewValidationError("origin.ref_id", "orden de compra requerida")
		}
		if o.LineItemIndex < 0 {
			return domain.NewValidationError("origin.line_item_index", "no puede ser negativo")
		}
	case OriginRoastOutput, OriginRoastConsumption, OriginBlendOutput, OriginBlendConsumption, OriginSaleConsumption:
		if o.RefID == "" {
			return domain.NewValidationError("origin.ref_id", "referencia requerida para %s", o.Type)
		}
	case OriginManualAdjustment:
		if strings.TrimSpace(o.Reason) == "" {
			return domain.NewValidationError("origin.reason", "el ajuste manual requiere motivo")
		}
		if o.UnitCost != nil && o.UnitCost.IsNegative() {
			return domain.NewValidationError("origin.unit_cost", "no puede ser negativo")
		}
	default:
		return domain.NewValidationError("origin.type", "origen desconocido %q", o.Type)
	}
	if o.Type != OriginManualAdjustment && o.UnitCost != nil {
		return domain.NewValidationError("origin.unit_cost", "solo aplica a ajustes manuales")
	}
	return nil
}

func (o Origin) String() string {
	switch o.Type {
	case OriginPurchaseReceipt:
		return fmt.Sprintf("%s:%s#%d", o.Type, o.RefID, o.LineItemIndex)
	case OriginManualAdjustment:
		return fmt.Sprintf("%s:%s", o.Type, o.Reason)
	default:
		return fmt.Sprintf("%s:%s", o.Type, o.RefID)
	}
}

// LedgerEntry es el registro inmutable de un cambio de cantidad sobre un StockItem.
// Las correcciones se hacen con nuevas entradas compensatorias.
type LedgerEntry struct {
	ID           string          `json:"id"`
	Seq          int64           `json:"seq"` // orden cronológico total dentro del store
	StockItemID  string          `json:"stock_item_id"`
	Delta        decimal.Decimal `json:"delta_kg"` // positivo = entrada, negativo = salida
	BalanceAfter decimal.Decimal `json:"balance_after_kg"`
	Origin       Origin          `json:"origin"`
	Correcting   bool            `json:"correcting"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Validate verifica la forma de la entrada antes de insertarla.
func (e *LedgerEntry) Validate() error {
	if e.StockItemID == "" {
		return domain.NewValidationError("stock_item_id", "es requerido")
	}
	if e.Delta.IsZero() {
		return domain.NewValidationError("delta_kg", "no puede ser cero")
	}
	if e.Correcting && e.Origin.Type != OriginManualAdjustment {
		return domain.NewValidationError("correcting", "solo un ajuste manual puede ser correctivo")
	}
	if e.Delta.IsPositive() && !e.Origin.Inbound() && e.Origin.Type != OriginManualAdjustment {
		return domain.NewValidationError("delta_kg", "%s no admite entradas", e.Origin.Type)
	}
	if e.Delta.IsNegative() && e.Origin.Inbound() {
		return domain.NewValidationError("delta_kg", "%s no admite salidas", e.Origin.Type)
	}
	return e.Origin.Validate()
}
