package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

func toTransformResponse(res inventory.TransformResult) dto.TransformResponse {
	return dto.TransformResponse{
		EventID:   res.EventID,
		Output:    res.Output,
		CostPerKg: res.CostPerKg,
		Entries:   res.Entries,
	}
}

// ── Tostión ───────────────────────────────────────────────────────────────────

// RoastHandler registra y consulta tostiones.
type RoastHandler struct {
	trace   *inventory.TraceabilityUseCase
	queries *usecase.RoastQueries
}

// NewRoastHandler construye el handler.
func NewRoastHandler(trace *inventory.TraceabilityUseCase, queries *usecase.RoastQueries) *RoastHandler {
	return &RoastHandler{trace: trace, queries: queries}
}

// List GET /api/roasts?mode=&batch_id=&from=&to=
func (h *RoastHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "mode", "batch_id", "output_stock_item_id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Get GET /api/roasts/:id
func (h *RoastHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar tostión
// @Description  Consume grano verde y produce grano tostado. El costo por kg de la salida queda fijado en el evento.
// @Tags         roasts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordRoastRequest  true  "Tostión"
// @Success      201  {object}  dto.TransformResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/roasts [post]
func (h *RoastHandler) Create(c *fiber.Ctx) error {
	var req dto.RecordRoastRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	inputs := make([]entity.RoastInput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		inputs = append(inputs, entity.RoastInput{StockItemID: in.StockItemID, Weight: in.WeightKg})
	}
	res, err := h.trace.RecordRoast(c.UserContext(), inventory.RecordRoastInput{
		BatchID:              req.BatchID,
		RoastDate:            orZero(req.RoastDate),
		Mode:                 entity.RoastMode(req.Mode),
		Roaster:              req.Roaster,
		Inputs:               inputs,
		OutputQuantity:       req.OutputQuantityKg,
		OperationalCostPerKg: req.OperationalCostPerKg,
		OutputStockItemID:    req.OutputStockItemID,
		Location:             req.Location,
		Profile:              req.Profile,
		Notes:                req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransformResponse(res))
}

// Audit compara el costo registrado con el recalculado desde las entradas.
// GET /api/roasts/:id/audit
func (h *RoastHandler) Audit(c *fiber.Ctx) error {
	out, err := h.trace.AuditRoast(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Mezcla ────────────────────────────────────────────────────────────────────

// BlendHandler registra y consulta mezclas.
type BlendHandler struct {
	trace   *inventory.TraceabilityUseCase
	queries *usecase.BlendQueries
}

// NewBlendHandler construye el handler.
func NewBlendHandler(trace *inventory.TraceabilityUseCase, queries *usecase.BlendQueries) *BlendHandler {
	return &BlendHandler{trace: trace, queries: queries}
}

// List GET /api/blends?name=&from=&to=
func (h *BlendHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "name", "output_stock_item_id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queries.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Get GET /api/blends/:id
func (h *BlendHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar mezcla
// @Description  Los porcentajes deben sumar 100. Consume porcentaje × salida / 100 kg de cada componente.
// @Tags         blends
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordBlendRequest  true  "Mezcla"
// @Success      201  {object}  dto.TransformResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/blends [post]
func (h *BlendHandler) Create(c *fiber.Ctx) error {
	var req dto.RecordBlendRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	components := make([]entity.BlendComponent, 0, len(req.Components))
	for _, comp := range req.Components {
		components = append(components, entity.BlendComponent{StockItemID: comp.StockItemID, Percentage: comp.Percentage})
	}
	res, err := h.trace.RecordBlend(c.UserContext(), inventory.RecordBlendInput{
		Name:              req.Name,
		BlendDate:         orZero(req.BlendDate),
		Components:        components,
		OutputQuantity:    req.OutputQuantityKg,
		OutputStockItemID: req.OutputStockItemID,
		Location:          req.Location,
		Notes:             req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransformResponse(res))
}

// Audit GET /api/blends/:id/audit
func (h *BlendHandler) Audit(c *fiber.Ctx) error {
	out, err := h.trace.AuditBlend(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Catación ──────────────────────────────────────────────────────────────────

// CuppingHandler maneja las sesiones de catación de una tostión.
type CuppingHandler struct {
	uc *usecase.CuppingUseCase
}

// NewCuppingHandler construye el handler.
func NewCuppingHandler(uc *usecase.CuppingUseCase) *CuppingHandler {
	return &CuppingHandler{uc: uc}
}

func cuppingList(in []*entity.CuppingSession) []dto.CuppingResponse {
	out := make([]dto.CuppingResponse, 0, len(in))
	for _, s := range in {
		out = append(out, usecase.ToCuppingResponse(s))
	}
	return out
}

// List GET /api/cuppings?roast_event_id=&roast_level=
func (h *CuppingHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "roast_event_id", "roast_level")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, cuppingList(out), page)
}

// ByRoast GET /api/roasts/:id/cuppings
func (h *CuppingHandler) ByRoast(c *fiber.Ctx) error {
	out, err := h.uc.ByRoast(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cuppingList(out))
}

// Create POST /api/cuppings
func (h *CuppingHandler) Create(c *fiber.Ctx) error {
	var req dto.CuppingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToCuppingResponse(out))
}

// Get GET /api/cuppings/:id
func (h *CuppingHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usecase.ToCuppingResponse(out))
}

// Update PUT /api/cuppings/:id
func (h *CuppingHandler) Update(c *fiber.Ctx) error {
	var req dto.CuppingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usecase.ToCuppingResponse(out))
}

// Delete DELETE /api/cuppings/:id
func (h *CuppingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
