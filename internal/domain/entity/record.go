package entity

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Record es el contrato mínimo que el Record Store exige a cada entidad persistible.
// Attrs expone los atributos filtrables (kind, variety, status, ...) como texto plano
// para que todos los backends filtren igual.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Attrs() map[string]string
	BusinessDate() time.Time
	Validate() error
}

// Variedades de grano.
type BeanVariety string

const (
	VarietyArabica  BeanVariety = "arabica"
	VarietyRobusta  BeanVariety = "robusta"
	VarietyLiberica BeanVariety = "liberica"
	VarietyBlend    BeanVariety = "blend"
)

// Valid indica si la variedad es conocida.
func (v BeanVariety) Valid() bool {
	switch v {
	case VarietyArabica, VarietyRobusta, VarietyLiberica, VarietyBlend:
		return true
	}
	return false
}

// StockKind distingue grano verde de grano tostado.
type StockKind string

const (
	KindGreenBean   StockKind = "green_bean"
	KindRoastedBean StockKind = "roasted_bean"
)

// Valid indica si el tipo de stock es conocido.
func (k StockKind) Valid() bool {
	return k == KindGreenBean || k == KindRoastedBean
}

var hundred = decimal.NewFromInt(100)

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return domain.NewValidationError(field, "debe ser mayor que cero")
	}
	return nil
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	return nil
}
