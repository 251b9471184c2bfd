package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Estados de pago de una venta.
type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "paid"
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentRefunded      PaymentStatus = "refunded"
)

// SaleLine consume una cantidad de un ítem de stock a un precio por kg.
type SaleLine struct {
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
}

// Revenue es cantidad × precio.
func (l SaleLine) Revenue() decimal.Decimal { return l.Quantity.Mul(l.PricePerKg) }

// Sale representa una venta. El precio de venta es independiente del costo base.
type Sale struct {
	ID              string        `json:"id"`
	InvoiceNumber   string        `json:"invoice_number"`
	Customer        string        `json:"customer"`
	SaleDate        time.Time     `json:"sale_date"`
	Lines           []SaleLine    `json:"lines"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ShippingAddress string        `json:"shipping_address,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (s *Sale) RecordID() string        { return s.ID }
func (s *Sale) SetRecordID(id string)   { s.ID = id }
func (s *Sale) BusinessDate() time.Time { return s.SaleDate }

func (s *Sale) Attrs() map[string]string {
	return map[string]string{
		"invoice_number": s.InvoiceNumber,
		"customer":       s.Customer,
		"payment_status": string(s.PaymentStatus),
	}
}

// Revenue es Σ ingresos de las líneas.
func (s *Sale) Revenue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Revenue())
	}
	return total
}

// Validate verifica cliente, líneas y estado de pago.
func (s *Sale) Validate() error {
	if strings.TrimSpace(s.Customer) == "" {
		return domain.NewValidationError("customer", "es requerido")
	}
	if s.SaleDate.IsZero() {
		return domain.NewValidationError("sale_date", "es requerida")
	}
	switch s.PaymentStatus {
	case PaymentPaid, PaymentUnpaid, PaymentPartiallyPaid, PaymentRefunded:
	default:
		return domain.NewValidationError("payment_status", "estado de pago desconocido %q", s.PaymentStatus)
	}
	if len(s.Lines) == 0 {
		return domain.NewValidationError("lines", "la venta necesita al menos una línea")
	}
	seen := make(map[string]struct{}, len(s.Lines))
	for _, l := range s.Lines {
		if l.StockItemID == "" {
			return domain.NewValidationError("lines.stock_item_id", "es requerido")
		}
		if _, dup := seen[l.StockItemID]; dup {
			return domain.NewValidationError("lines.stock_item_id", "ítem repetido %s", l.StockItemID)
		}
		seen[l.StockItemID] = struct{}{}
		if err := requirePositive("lines.quantity_kg", l.Quantity); err != nil {
			return err
		}
		if err := requireNonNegative("lines.price_per_kg", l.PricePerKg); err != nil {
			return err
		}
	}
	return nil
}
