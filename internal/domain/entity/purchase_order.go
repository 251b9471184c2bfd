package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
type PurchaseOrderStatus string

const (
	POStatusPending   PurchaseOrderStatus = "pending"
	POStatusApproved  PurchaseOrderStatus = "approved"
	POStatusRejected  PurchaseOrderStatus = "rejected"
	POStatusCompleted PurchaseOrderStatus = "completed"
)

// transiciones permitidas; completed y rejected son terminales.
var poTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusPending:  {POStatusApproved, POStatusRejected},
	POStatusApproved: {POStatusCompleted},
}

// CanTransitionTo indica si el cambio de estado es válido.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// POLineItem es una línea de la orden: variedad, cantidad pedida y precio por kg.
type POLineItem struct {
	Variety          BeanVariety     `json:"variety"`
	Quantity         decimal.Decimal `json:"quantity_kg"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity decimal.Decimal `json:"received_kg"` // acumulado de recepciones
}

// Outstanding devuelve lo pendiente por recibir en la línea.
func (l POLineItem) Outstanding() decimal.Decimal {
	return l.Quantity.Sub(l.ReceivedQuantity)
}

// PurchaseOrder representa una orden de compra de grano verde a un proveedor.
type PurchaseOrder struct {
	ID                   string              `json:"id"`
	SupplierID           string              `json:"supplier_id"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	LineItems            []POLineItem        `json:"line_items"`
	Status               PurchaseOrderStatus `json:"status"`
	Notes                string              `json:"notes,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func (p *PurchaseOrder) RecordID() string        { return p.ID }
func (p *PurchaseOrder) SetRecordID(id string)   { p.ID = id }
func (p *PurchaseOrder) BusinessDate() time.Time { return p.OrderDate }

func (p *PurchaseOrder) Attrs() map[string]string {
	return map[string]string{
		"supplier_id": p.SupplierID,
		"status":      string(p.Status),
	}
}

// Line devuelve la línea por índice; false si el índice no existe.
func (p *PurchaseOrder) Line(index int) (POLineItem, bool) {
	if index < 0 || index >= len(p.LineItems) {
		return POLineItem{}, false
	}
	return p.LineItems[index], true
}

// Total es Σ cantidad × precio de las líneas.
func (p *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.LineItems {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return total
}

// FullyReceived indica si todas las líneas se recibieron completas.
func (p *PurchaseOrder) FullyReceived() bool {
	for _, l := range p.LineItems {
		if l.Outstanding().IsPositive() {
			return false
		}
	}
	return len(p.LineItems) > 0
}

// TransitionTo aplica un cambio de estado respetando la máquina de estados.
func (p *PurchaseOrder) TransitionTo(next PurchaseOrderStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return domain.NewValidationError("status", "transición no permitida: %s -> %s", p.Status, next)
	}
	p.Status = next
	return nil
}

// Validate verifica proveedor, estado y líneas.
func (p *PurchaseOrder) Validate() error {
	if strings.TrimSpace(p.SupplierID) == "" {
		return domain.NewValidationError("supplier_id", "es requerido")
	}
	if p.OrderDate.IsZero() {
		return domain.NewValidationError("order_date", "es requerida")
	}
	switch p.Status {
	case POStatusPending, POStatusApproved, POStatusRejected, POStatusCompleted:
	default:
		return domain.NewValidationError("status", "estado desconocido %q", p.Status)
	}
	if len(p.LineItems) == 0 {
		return domain.NewValidationError("line_items", "la orden necesita al menos una línea")
	}
	for _, l := range p.LineItems {
		if !l.Variety.Valid() || l.Variety == VarietyBlend {
			return domain.NewValidationError("line_items.variety", "variedad inválida %q", l.Variety)
		}
		if err := requirePositive("line_items.quantity_kg", l.Quantity); err != nil {
			return err
		}
		if err := requireNonNegative("line_items.unit_price", l.UnitPrice); err != nil {
			return err
		}
		if err := requireNonNegative("line_items.received_kg", l.ReceivedQuantity); err != nil {
			return err
		}
		if l.ReceivedQuantity.GreaterThan(l.Quantity) {
			return domain.NewValidationError("line_items.received_kg", "excede la cantidad pedida")
		}
	}
	return nil
}
