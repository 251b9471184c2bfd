package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
)

// ReportHandler entrega el reporte HPP en PDF.
type ReportHandler struct {
	trace *inventory.TraceabilityUseCase
	pdf   inventory.ReportGenerator
}

// NewReportHandler construye el handler.
func NewReportHandler(trace *inventory.TraceabilityUseCase, pdf inventory.ReportGenerator) *ReportHandler {
	return &ReportHandler{trace: trace, pdf: pdf}
}

// CostReport godoc
// @Summary      Reporte HPP en PDF
// @Description  Costo base, HPP por empaque del catálogo, trazabilidad y movimientos del ítem.
// @Tags         reports
// @Produce      application/pdf
// @Param        id                 path   string  true   "ID del ítem de stock"
// @Param        other_cost_per_kg  query  string  false  "Otros costos por kg aplicados a cada empaque"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reports/hpp/{id} [get]
func (h *ReportHandler) CostReport(c *fiber.Ctx) error {
	other, err := parseDecimal("other_cost_per_kg", c.Query("other_cost_per_kg"))
	if err != nil {
		return respondError(c, err)
	}
	id := c.Params("id")
	rep, err := h.trace.BuildCostReport(c.UserContext(), id, other)
	if err != nil {
		return respondError(c, err)
	}
	pdf, err := h.pdf.CostReportPDF(c.UserContext(), rep)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"hpp-%s.pdf\"", id))
	return c.Send(pdf)
}
