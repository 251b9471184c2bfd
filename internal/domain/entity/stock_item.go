package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// StockItem representa una cantidad de grano (verde o tostado) de una variedad en una ubicación.
// Quantity es una caché materializada de Σ LedgerEntry.Delta; solo el ledger la modifica.
type StockItem struct {
	ID          string          `json:"id"`
	Kind        StockKind       `json:"kind"`
	Variety     BeanVariety     `json:"variety"`
	Quantity    decimal.Decimal `json:"quantity_kg"`
	Location    string          `json:"location"`
	Version     int64           `json:"version"` // se incrementa con cada movimiento
	LastUpdated time.Time       `json:"last_updated"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *StockItem) RecordID() string        { return s.ID }
func (s *StockItem) SetRecordID(id string)   { s.ID = id }
func (s *StockItem) BusinessDate() time.Time { return s.LastUpdated }

func (s *StockItem) Attrs() map[string]string {
	return map[string]string{
		"kind":     string(s.Kind),
		"variety":  string(s.Variety),
		"location": s.Location,
	}
}

// Validate verifica los campos obligatorios y que la cantidad no sea negativa.
func (s *StockItem) Validate() error {
	if !s.Kind.Valid() {
		return domain.NewValidationError("kind", "tipo de stock desconocido %q", s.Kind)
	}
	if !s.Variety.Valid() {
		return domain.NewValidationError("variety", "variedad desconocida %q", s.Variety)
	}
	if strings.TrimSpace(s.Location) == "" {
		return domain.NewValidationError("location", "es requerido")
	}
	return requireNonNegative("quantity_kg", s.Quantity)
}
