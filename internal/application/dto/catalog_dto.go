package dto

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ── Proveedores ───────────────────────────────────────────────────────────────

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	ContactPerson string   `json:"contact_person,omitempty" validate:"max=200"`
	Phone         string   `json:"phone,omitempty" validate:"max=40"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	Origin        string   `json:"origin,omitempty" validate:"max=120"`
	Specialties   []string `json:"specialties,omitempty" validate:"dive,oneof=arabica robusta liberica blend"`
}

// UpdateSupplierRequest body para PATCH /api/suppliers/:id (campos opcionales).
type UpdateSupplierRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	ContactPerson *string  `json:"contact_person" validate:"omitempty,max=200"`
	Phone         *string  `json:"phone" validate:"omitempty,max=40"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Origin        *string  `json:"origin" validate:"omitempty,max=120"`
	Specialties   []string `json:"specialties" validate:"omitempty,dive,oneof=arabica robusta liberica blend"`
}

// ── Órdenes de compra ─────────────────────────────────────────────────────────

// POLineRequest una línea de la orden.
type POLineRequest struct {
	Variety    string          `json:"variety" validate:"required,oneof=arabica robusta liberica"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders. La orden nace pendiente.
type CreatePurchaseOrderRequest struct {
	SupplierID           string          `json:"supplier_id" validate:"required"`
	OrderDate            *time.Time      `json:"order_date,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	LineItems            []POLineRequest `json:"line_items" validate:"required,min=1,dive"`
	Notes                string          `json:"notes,omitempty" validate:"max=1000"`
}

// UpdatePurchaseOrderRequest body para PATCH /api/purchase-orders/:id.
// Las líneas solo se pueden reemplazar mientras la orden está pendiente.
type UpdatePurchaseOrderRequest struct {
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date"`
	LineItems            []POLineRequest `json:"line_items" validate:"omitempty,min=1,dive"`
	Notes                *string         `json:"notes" validate:"omitempty,max=1000"`
}

// UpdatePOStatusRequest body para POST /api/purchase-orders/:id/status.
type UpdatePOStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected completed"`
}

// ── Clasificación de grano verde ──────────────────────────────────────────────

// GradeRequest body para POST /api/grades y PUT /api/grades/:id.
type GradeRequest struct {
	PurchaseOrderID string                  `json:"purchase_order_id" validate:"required"`
	BatchID         string                  `json:"batch_id" validate:"required,max=80"`
	Variety         string                  `json:"variety" validate:"required,oneof=arabica robusta liberica"`
	GradingDate     *time.Time              `json:"grading_date,omitempty"`
	Status          string                  `json:"status" validate:"required,oneof=accepted returned"`
	Analysis        entity.PhysicalAnalysis `json:"analysis"`
	Notes           string                  `json:"notes,omitempty" validate:"max=1000"`
}

// ── Catación ──────────────────────────────────────────────────────────────────

// CuppingRequest body para POST /api/cuppings y PUT /api/cuppings/:id.
type CuppingRequest struct {
	RoastEventID string                `json:"roast_event_id" validate:"required"`
	SessionDate  *time.Time            `json:"session_date,omitempty"`
	RoastLevel   string                `json:"roast_level" validate:"required,oneof=cinnamon light city full_city dark"`
	Scores       entity.CuppingScores  `json:"scores"`
	Defects      entity.CuppingDefects `json:"defects"`
	Notes        string                `json:"notes,omitempty" validate:"max=1000"`
}

// CuppingResponse agrega el puntaje final calculado.
type CuppingResponse struct {
	*entity.CuppingSession
	FinalScore decimal.Decimal `json:"final_score"`
}

// ── Empaques ──────────────────────────────────────────────────────────────────

// PackagingRequest body para POST /api/packaging.
type PackagingRequest struct {
	Name   string          `json:"name" validate:"required,max=120"`
	SizeKg decimal.Decimal `json:"size_kg"`
	Cost   decimal.Decimal `json:"cost"`
}

// UpdatePackagingRequest body para PATCH /api/packaging/:id.
type UpdatePackagingRequest struct {
	Name   *string          `json:"name" validate:"omitempty,min=1,max=120"`
	SizeKg *decimal.Decimal `json:"size_kg"`
	Cost   *decimal.Decimal `json:"cost"`
}

// ── Alertas de stock ──────────────────────────────────────────────────────────

// AlertSettingRequest body para POST /api/alert-settings. Una sola alerta por variedad y tipo.
type AlertSettingRequest struct {
	Variety     string          `json:"variety" validate:"required,oneof=arabica robusta liberica blend"`
	Kind        string          `json:"kind" validate:"required,oneof=green_bean roasted_bean"`
	ThresholdKg decimal.Decimal `json:"threshold_kg"`
}

// UpdateAlertSettingRequest body para PATCH /api/alert-settings/:id.
type UpdateAlertSettingRequest struct {
	ThresholdKg decimal.Decimal `json:"threshold_kg"`
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// ExpenseRequest body para POST /api/expenses y PUT /api/expenses/:id.
type ExpenseRequest struct {
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
	Description string          `json:"description" validate:"required,max=300"`
	Category    string          `json:"category" validate:"required,oneof=utilities salary rent marketing maintenance other"`
	Amount      decimal.Decimal `json:"amount"`
}

// ── Tareas ────────────────────────────────────────────────────────────────────

// TaskRequest body para POST /api/tasks y PUT /api/tasks/:id.
type TaskRequest struct {
	Text       string     `json:"text" validate:"required,max=500"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Priority   string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo string     `json:"assigned_to" validate:"max=120"`
}

// UpdateTaskStatusRequest body para POST /api/tasks/:id/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}
