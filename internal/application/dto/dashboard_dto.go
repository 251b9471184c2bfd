package dto

import "github.com/shopspring/decimal"

// FinancialSummaryDTO respuesta de GET /api/dashboard/summary.
// Contiene los KPIs del día y del mes en curso, el valor del inventario y el Top de variedades del mes.
type FinancialSummaryDTO struct {
	// Métricas del día actual (00:00 – 23:59)
	TodaySales       decimal.Decimal `json:"today_sales"`
	TodayCOGS        decimal.Decimal `json:"today_cogs"`
	TodayGrossProfit decimal.Decimal `json:"today_gross_profit"`

	// Métricas del mes en curso (día 1 – hoy)
	MonthlySales       decimal.Decimal            `json:"monthly_sales"`
	MonthlyCOGS        decimal.Decimal            `json:"monthly_cogs"`
	MonthlyGrossProfit decimal.Decimal            `json:"monthly_gross_profit"`
	MonthlyExpenses    decimal.Decimal            `json:"monthly_expenses"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	NetProfit          decimal.Decimal            `json:"net_profit"` // margen bruto − gastos

	// Inventario valorado al costo base vigente
	InventoryValue decimal.Decimal `json:"inventory_value"`
	InventoryKg    decimal.Decimal `json:"inventory_kg"`
	UnvaluedItems  []string        `json:"unvalued_items,omitempty"` // ítems con trazabilidad rota

	TopVarieties []TopVarietyDTO `json:"top_varieties"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// TopVarietyDTO resumen de ventas de una variedad para el widget del dashboard.
type TopVarietyDTO struct {
	Variety          string          `json:"variety"`
	QuantitySold     decimal.Decimal `json:"quantity_sold_kg"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"` // (revenue - cogs) / revenue * 100
}
