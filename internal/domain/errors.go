package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBrokenLineage     = errors.New("trazabilidad rota")
	ErrCyclicLineage     = errors.New("trazabilidad cíclica")
	ErrLLMUnavailable    = errors.New("servicio de IA no disponible")
)

// ValidationError describe una escritura mal formada. Unwrap devuelve ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError para un campo.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Message
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError se produce cuando una salida dejaría el saldo en negativo.
type InsufficientStockError struct {
	StockItemID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s: disponible %s kg, solicitado %s kg",
		e.StockItemID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// BrokenLineageError indica que una referencia de origen no se pudo resolver.
// Bloquea el cálculo dependiente: nunca se reemplaza por costo cero.
type BrokenLineageError struct {
	StockItemID string
	Origin      string // "roast_output:<id>", "purchase_receipt:<id>#2", ...
	Reason      string
}

func (e *BrokenLineageError) Error() string {
	if e.Origin == "" {
		return fmt.Sprintf("trazabilidad rota en %s: %s", e.StockItemID, e.Reason)
	}
	return fmt.Sprintf("trazabilidad rota en %s (%s): %s", e.StockItemID, e.Origin, e.Reason)
}

func (e *BrokenLineageError) Unwrap() error { return ErrBrokenLineage }

// CyclicLineageError indica que un ítem aparece en su propia ascendencia.
type CyclicLineageError struct {
	Path []string
}

func (e *CyclicLineageError) Error() string {
	return "trazabilidad cíclica: " + strings.Join(e.Path, " -> ")
}

func (e *CyclicLineageError) Unwrap() error { return ErrCyclicLineage }

// NotFoundError envuelve ErrNotFound con la colección y el ID buscado.
func NotFoundError(collection, id string) error {
	return fmt.Errorf("%s %q: %w", collection, id, ErrNotFound)
}
