package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// SaleHandler registra ventas y las valora.
type SaleHandler struct {
	trace   *inventory.TraceabilityUseCase
	queries *usecase.SaleQueries
}

// NewSaleHandler construye el handler.
func NewSaleHandler(trace *inventory.TraceabilityUseCase, queries *usecase.SaleQueries) *SaleHandler {
	return &SaleHandler{trace: trace, queries: queries}
}

// List GET /api/sales?customer=&payment_status=&invoice_number=&from=&to=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "customer", "payment_status", "invoice_number")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Get GET /api/sales/:id
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar venta
// @Description  Registra una salida por línea. Si alguna línea supera el disponible no se registra nada (409).
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "Venta"
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var req dto.RecordSaleRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	lines := make([]entity.SaleLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, entity.SaleLine{StockItemID: l.StockItemID, Quantity: l.QuantityKg, PricePerKg: l.PricePerKg})
	}
	res, err := h.trace.RecordSale(c.UserContext(), inventory.RecordSaleInput{
		InvoiceNumber:   req.InvoiceNumber,
		Customer:        req.Customer,
		SaleDate:        orZero(req.SaleDate),
		Lines:           lines,
		PaymentStatus:   entity.PaymentStatus(req.PaymentStatus),
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleResponse{Sale: res.Sale, Entries: res.Entries})
}

// Valuation godoc
// @Summary      Valorar venta
// @Description  COGS y margen bruto por línea con el costo base vigente de cada ítem.
// @Tags         sales
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  valuation.SaleValuation
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/valuation [get]
func (h *SaleHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.trace.GetSaleValuation(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
