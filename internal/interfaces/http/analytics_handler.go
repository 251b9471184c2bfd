package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/cafetal-api/internal/application/analytics"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AnalyticsHandler maneja COGS, alertas de reposición y el análisis con IA.
type AnalyticsHandler struct {
	trace         *inventory.TraceabilityUseCase
	replenishment *inventory.ReplenishmentUseCase
	insights      *appanalytics.InsightsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(trace *inventory.TraceabilityUseCase, replenishment *inventory.ReplenishmentUseCase, insights *appanalytics.InsightsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{trace: trace, replenishment: replenishment, insights: insights}
}

// COGS godoc
// @Summary      COGS y margen bruto del período
// @Description  Valora cada venta del rango con el costo base vigente. Una venta con trazabilidad rota
//               bloquea el reporte (422); nunca se valora a costo cero.
// @Tags         analytics
// @Produce      json
// @Param        from  query  string  false  "Inicio (YYYY-MM-DD)"
// @Param        to    query  string  false  "Fin inclusive (YYYY-MM-DD)"
// @Success      200  {object}  dto.COGSResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/analytics/cogs [get]
func (h *AnalyticsHandler) COGS(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, err)
	}
	rep, err := h.trace.GetCOGS(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err)
	}

	out := dto.COGSResponse{
		From:        c.Query("from"),
		To:          c.Query("to"),
		SalesCount:  rep.SalesCount,
		Revenue:     rep.Revenue,
		COGS:        rep.COGS,
		GrossMargin: rep.GrossMargin,
		Sales:       rep.Sales,
	}
	if rep.Revenue.IsPositive() {
		out.MarginPct = rep.GrossMargin.Div(rep.Revenue).Mul(hundred).Round(2)
	}
	if out.Sales == nil {
		out.Sales = []valuation.SaleValuation{}
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Alertas de stock bajo
// @Description  Variedades en o bajo su umbral configurado, con la cantidad sugerida de compra.
// @Tags         analytics
// @Produce      json
// @Success      200  {array}   dto.LowStockAlertDTO
// @Router       /api/analytics/low-stock [get]
func (h *AnalyticsHandler) LowStock(c *fiber.Ctx) error {
	alerts, err := h.replenishment.LowStockAlerts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LowStockAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.LowStockAlertDTO{
			Variety:       string(a.Variety),
			Kind:          string(a.Kind),
			ThresholdKg:   a.ThresholdKg,
			CurrentKg:     a.CurrentKg,
			SuggestedKg:   a.SuggestedKg,
			EstimatedCost: a.EstimatedCost,
			StockItemIDs:  a.StockItemIDs,
		})
	}
	return c.JSON(out)
}

// Insights godoc
// @Summary      Análisis del negocio con IA
// @Description  Arma el contexto (inventario, ventas, órdenes, alertas) y pide el análisis al proveedor
//               configurado. 503 si no hay proveedor o la llamada falla.
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  dto.BusinessInsightsDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/analytics/insights [post]
func (h *AnalyticsHandler) Insights(c *fiber.Ctx) error {
	out, err := h.insights.BusinessInsights(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
