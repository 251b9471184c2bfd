package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Resultado de la clasificación de un lote de grano verde.
type GradeStatus string

const (
	GradeAccepted GradeStatus = "accepted"
	GradeReturned GradeStatus = "returned"
)

// PhysicalAnalysis resume el análisis físico de la muestra.
type PhysicalAnalysis struct {
	ScreenSize    int             `json:"screen_size"` // criba (malla 14-20)
	MoisturePct   decimal.Decimal `json:"moisture_pct"`
	DensityGL     decimal.Decimal `json:"density_g_l"`
	DefectCount   int             `json:"defect_count"`
	WaterActivity decimal.Decimal `json:"water_activity"`
}

// GreenBeanGrade es la clasificación de un lote recibido contra una orden de compra.
type GreenBeanGrade struct {
	ID              string           `json:"id"`
	PurchaseOrderID string           `json:"purchase_order_id"`
	BatchID         string           `json:"batch_id"`
	Variety         BeanVariety      `json:"variety"`
	GradingDate     time.Time        `json:"grading_date"`
	Status          GradeStatus      `json:"status"`
	Analysis        PhysicalAnalysis `json:"analysis"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (g *GreenBeanGrade) RecordID() string        { return g.ID }
func (g *GreenBeanGrade) SetRecordID(id string)   { g.ID = id }
func (g *GreenBeanGrade) BusinessDate() time.Time { return g.GradingDate }

func (g *GreenBeanGrade) Attrs() map[string]string {
	return map[string]string{
		"purchase_order_id": g.PurchaseOrderID,
		"variety":           string(g.Variety),
		"status":            string(g.Status),
	}
}

// Validate verifica rangos de humedad (0-100) y actividad de agua (0-1).
func (g *GreenBeanGrade) Validate() error {
	if strings.TrimSpace(g.PurchaseOrderID) == "" {
		return domain.NewValidationError("purchase_order_id", "es requerido")
	}
	if strings.TrimSpace(g.BatchID) == "" {
		return domain.NewValidationError("batch_id", "es requerido")
	}
	if !g.Variety.Valid() {
		return domain.NewValidationError("variety", "variedad desconocida %q", g.Variety)
	}
	if g.Status != GradeAccepted && g.Status != GradeReturned {
		return domain.NewValidationError("status", "estado desconocido %q", g.Status)
	}
	a := g.Analysis
	if a.MoisturePct.IsNegative() || a.MoisturePct.GreaterThan(hundred) {
		return domain.NewValidationError("analysis.moisture_pct", "debe estar entre 0 y 100")
	}
	if a.WaterActivity.IsNegative() || a.WaterActivity.GreaterThan(decimal.NewFromInt(1)) {
		return domain.NewValidationError("analysis.water_activity", "debe estar entre 0 y 1")
	}
	if a.DefectCount < 0 || a.ScreenSize < 0 {
		return domain.NewValidationError("analysis", "criba y defectos no pueden ser negativos")
	}
	return requireNonNegative("analysis.density_g_l", a.DensityGL)
}
