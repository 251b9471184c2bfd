package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/cafetal-api/internal/application/analytics"
	"github.com/jhoicas/cafetal-api/internal/domain"
)

// DashboardHandler expone el resumen financiero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve ventas, COGS y gastos del día y del mes, valor del inventario y top 5
// variedades.
// GET /api/dashboard/summary?as_of=YYYY-MM-DD
//
// Sin as_of el día de referencia es hoy. 422 si alguna venta del mes no tiene costo trazable.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	raw := c.Query("as_of")
	if raw == "" {
		summary, err := h.uc.FinancialSummary(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return respondError(c, domain.NewValidationError("as_of", "formato esperado %s", dateLayout))
	}
	summary, err := h.uc.FinancialSummaryAt(c.UserContext(), day.Add(12*time.Hour))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
