package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Packaging es una presentación de venta (bolsa de 250 g, 1 kg, ...) con su costo.
type Packaging struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SizeKg    decimal.Decimal `json:"size_kg"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
}

func (p *Packaging) RecordID() string         { return p.ID }
func (p *Packaging) SetRecordID(id string)    { p.ID = id }
func (p *Packaging) BusinessDate() time.Time  { return p.CreatedAt }
func (p *Packaging) Attrs() map[string]string { return map[string]string{"name": p.Name} }

func (p *Packaging) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	if err := requirePositive("size_kg", p.SizeKg); err != nil {
		return err
	}
	return requireNonNegative("cost", p.Cost)
}

// AlertSetting define el umbral de stock bajo para una variedad y tipo.
type AlertSetting struct {
	ID          string          `json:"id"`
	Variety     BeanVariety     `json:"variety"`
	Kind        StockKind       `json:"kind"`
	ThresholdKg decimal.Decimal `json:"threshold_kg"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (a *AlertSetting) RecordID() string        { return a.ID }
func (a *AlertSetting) SetRecordID(id string)   { a.ID = id }
func (a *AlertSetting) BusinessDate() time.Time { return a.CreatedAt }

func (a *AlertSetting) Attrs() map[string]string {
	return map[string]string{"variety": string(a.Variety), "kind": string(a.Kind)}
}

func (a *AlertSetting) Validate() error {
	if !a.Variety.Valid() {
		return domain.NewValidationError("variety", "variedad desconocida %q", a.Variety)
	}
	if !a.Kind.Valid() {
		return domain.NewValidationError("kind", "tipo de stock desconocido %q", a.Kind)
	}
	return requireNonNegative("threshold_kg", a.ThresholdKg)
}

// Categorías de gasto operativo.
type ExpenseCategory string

const (
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseSalary      ExpenseCategory = "salary"
	ExpenseRent        ExpenseCategory = "rent"
	ExpenseMarketing   ExpenseCategory = "marketing"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseOther       ExpenseCategory = "other"
)

// Expense es un gasto operativo fuera del costo del grano.
type Expense struct {
	ID          string          `json:"id"`
	ExpenseDate time.Time       `json:"expense_date"`
	Description string          `json:"description"`
	Category    ExpenseCategory `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (e *Expense) RecordID() string        { return e.ID }
func (e *Expense) SetRecordID(id string)   { e.ID = id }
func (e *Expense) BusinessDate() time.Time { return e.ExpenseDate }

func (e *Expense) Attrs() map[string]string {
	return map[string]string{"category": string(e.Category)}
}

func (e *Expense) Validate() error {
	if e.ExpenseDate.IsZero() {
		return domain.NewValidationError("expense_date", "es requerida")
	}
	if strings.TrimSpace(e.Description) == "" {
		return domain.NewValidationError("description", "es requerida")
	}
	switch e.Category {
	case ExpenseUtilities, ExpenseSalary, ExpenseRent, ExpenseMarketing, ExpenseMaintenance, ExpenseOther:
	default:
		return domain.NewValidationError("category", "categoría desconocida %q", e.Category)
	}
	return requirePositive("amount", e.Amount)
}
