package dto

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// COGSResponse respuesta de GET /api/analytics/cogs.
type COGSResponse struct {
	From        string                    `json:"from,omitempty"`
	To          string                    `json:"to,omitempty"`
	SalesCount  int                       `json:"sales_count"`
	Revenue     decimal.Decimal           `json:"revenue"`
	COGS        decimal.Decimal           `json:"cogs"`
	GrossMargin decimal.Decimal           `json:"gross_margin"`
	MarginPct   decimal.Decimal           `json:"margin_pct"` // GrossMargin / Revenue * 100
	Sales       []valuation.SaleValuation `json:"sales"`
}

// LowStockAlertDTO una variedad/tipo en o bajo su umbral.
type LowStockAlertDTO struct {
	Variety       string           `json:"variety"`
	Kind          string           `json:"kind"`
	ThresholdKg   decimal.Decimal  `json:"threshold_kg"`
	CurrentKg     decimal.Decimal  `json:"current_kg"`
	SuggestedKg   decimal.Decimal  `json:"suggested_kg"`   // lleva el stock a 1.5 × umbral
	EstimatedCost *decimal.Decimal `json:"estimated_cost"` // null si no hay costo resoluble
	StockItemIDs  []string         `json:"stock_item_ids"`
}

// BusinessInsightsDTO respuesta de POST /api/analytics/insights.
type BusinessInsightsDTO struct {
	Insights    string    `json:"insights"` // markdown
	GeneratedAt time.Time `json:"generated_at"`
}
