package dto

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ── Stock ─────────────────────────────────────────────────────────────────────

// CreateStockItemRequest body para POST /api/stock.
// Un saldo de apertura se registra como ajuste manual con su costo por kg.
type CreateStockItemRequest struct {
	Kind              string           `json:"kind" validate:"required,oneof=green_bean roasted_bean"`
	Variety           string           `json:"variety" validate:"required,oneof=arabica robusta liberica blend"`
	Location          string           `json:"location" validate:"max=120"`
	OpeningQuantityKg decimal.Decimal  `json:"opening_quantity_kg"`
	OpeningCostPerKg  *decimal.Decimal `json:"opening_cost_per_kg,omitempty"`
}

// UpdateStockItemRequest body para PATCH /api/stock/:id. La cantidad solo cambia por el ledger.
type UpdateStockItemRequest struct {
	Location *string `json:"location" validate:"omitempty,max=120"`
}

// StockListRequest filtros de GET /api/stock.
type StockListRequest struct {
	Kind     string `query:"kind" validate:"omitempty,oneof=green_bean roasted_bean"`
	Variety  string `query:"variety" validate:"omitempty,oneof=arabica robusta liberica blend"`
	Location string `query:"location"`
}

// AdjustStockRequest body para POST /api/stock/:id/adjustments.
type AdjustStockRequest struct {
	DeltaKg    decimal.Decimal  `json:"delta_kg"`
	Reason     string           `json:"reason" validate:"required,max=500"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`  // costo por kg de una entrada manual
	Correcting bool             `json:"correcting,omitempty"` // corrección explícita: permite saldo negativo
	AdjustedAt *time.Time       `json:"adjusted_at,omitempty"`
}

// CostBasisResponse respuesta de GET /api/stock/:id/cost-basis.
type CostBasisResponse struct {
	StockItemID string          `json:"stock_item_id"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	CostPerKg   decimal.Decimal `json:"cost_per_kg"`
	Value       decimal.Decimal `json:"value"`
}

// UnitEconomicsRequest query de GET /api/stock/:id/unit-economics.
// Con packaging_id se usan tamaño y costo del catálogo.
type UnitEconomicsRequest struct {
	PackagingID     string `query:"packaging_id"`
	PackagingSizeKg string `query:"packaging_size_kg"`
	PackagingCost   string `query:"packaging_cost"`
	OtherCostPerKg  string `query:"other_cost_per_kg"`
}

// LedgerByOriginRequest query de GET /api/ledger: movimientos producidos por un evento.
type LedgerByOriginRequest struct {
	OriginType string `query:"origin_type" validate:"required,oneof=purchase_receipt roast_output roast_consumption blend_output blend_consumption sale_consumption"`
	RefID      string `query:"ref_id" validate:"required"`
}

// ── Compras ───────────────────────────────────────────────────────────────────

// ReceivePurchaseRequest body para POST /api/purchase-orders/:id/receipts.
type ReceivePurchaseRequest struct {
	LineItemIndex int             `json:"line_item_index" validate:"min=0"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	StockItemID   string          `json:"stock_item_id,omitempty"` // vacío: se crea un ítem de grano verde
	Location      string          `json:"location,omitempty" validate:"max=120"`
	ReceivedAt    *time.Time      `json:"received_at,omitempty"`
}

// ReceiptResponse resultado de una recepción.
type ReceiptResponse struct {
	Entry         *entity.LedgerEntry   `json:"entry"`
	StockItem     *entity.StockItem     `json:"stock_item"`
	PurchaseOrder *entity.PurchaseOrder `json:"purchase_order"`
}

// ── Transformaciones ──────────────────────────────────────────────────────────

// RoastInputRequest consumo de un ítem de grano verde.
type RoastInputRequest struct {
	StockItemID string          `json:"stock_item_id" validate:"required"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
}

// RecordRoastRequest body para POST /api/roasts.
type RecordRoastRequest struct {
	BatchID              string              `json:"batch_id" validate:"max=80"`
	RoastDate            *time.Time          `json:"roast_date,omitempty"`
	Mode                 string              `json:"mode" validate:"omitempty,oneof=internal external"`
	Roaster              string              `json:"roaster,omitempty" validate:"max=120"`
	Inputs               []RoastInputRequest `json:"inputs" validate:"required,min=1,dive"`
	OutputQuantityKg     decimal.Decimal     `json:"output_quantity_kg"`
	OperationalCostPerKg decimal.Decimal     `json:"operational_cost_per_kg"`
	OutputStockItemID    string              `json:"output_stock_item_id,omitempty"`
	Location             string              `json:"location,omitempty" validate:"max=120"`
	Profile              entity.RoastProfile `json:"profile"`
	Notes                string              `json:"notes,omitempty" validate:"max=1000"`
}

// BlendComponentRequest participación porcentual de un ítem tostado.
type BlendComponentRequest struct {
	StockItemID string          `json:"stock_item_id" validate:"required"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// RecordBlendRequest body para POST /api/blends.
type RecordBlendRequest struct {
	Name              string                  `json:"name" validate:"required,max=120"`
	BlendDate         *time.Time              `json:"blend_date,omitempty"`
	Components        []BlendComponentRequest `json:"components" validate:"required,min=1,dive"`
	OutputQuantityKg  decimal.Decimal         `json:"output_quantity_kg"`
	OutputStockItemID string                  `json:"output_stock_item_id,omitempty"`
	Location          string                  `json:"location,omitempty" validate:"max=120"`
	Notes             string                  `json:"notes,omitempty" validate:"max=1000"`
}

// TransformResponse resultado de una tostión o mezcla.
type TransformResponse struct {
	EventID   string                `json:"event_id"`
	Output    *entity.StockItem     `json:"output"`
	CostPerKg decimal.Decimal       `json:"cost_per_kg"`
	Entries   []*entity.LedgerEntry `json:"entries"`
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// SaleLineRequest una línea de venta.
type SaleLineRequest struct {
	StockItemID string          `json:"stock_item_id" validate:"required"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
}

// RecordSaleRequest body para POST /api/sales.
type RecordSaleRequest struct {
	InvoiceNumber   string            `json:"invoice_number" validate:"max=60"`
	Customer        string            `json:"customer" validate:"required,max=200"`
	SaleDate        *time.Time        `json:"sale_date,omitempty"`
	Lines           []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaymentStatus   string            `json:"payment_status" validate:"omitempty,oneof=paid unpaid partially_paid refunded"`
	ShippingAddress string            `json:"shipping_address,omitempty" validate:"max=300"`
	Notes           string            `json:"notes,omitempty" validate:"max=1000"`
}

// SaleResponse resultado de una venta.
type SaleResponse struct {
	Sale    *entity.Sale          `json:"sale"`
	Entries []*entity.LedgerEntry `json:"entries"`
}

// ── Listados ──────────────────────────────────────────────────────────────────

// DateRangeRequest rango opcional por fecha de negocio (YYYY-MM-DD, ambos inclusive).
type DateRangeRequest struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ListResponse envoltorio genérico de listados paginados.
type ListResponse[T any] struct {
	Items []T          `json:"items"`
	Page  PageResponse `json:"page"`
}
