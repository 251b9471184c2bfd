package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// StockHandler maneja los ítems de stock y sus consultas de trazabilidad.
type StockHandler struct {
	stock *usecase.StockUseCase
	trace *inventory.TraceabilityUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *usecase.StockUseCase, trace *inventory.TraceabilityUseCase) *StockHandler {
	return &StockHandler{stock: stock, trace: trace}
}

// List godoc
// @Summary      Listar ítems de stock
// @Tags         stock
// @Produce      json
// @Param        kind      query  string  false  "green_bean | roasted_bean"
// @Param        variety   query  string  false  "arabica | robusta | liberica | blend"
// @Param        location  query  string  false  "Ubicación exacta"
// @Param        limit     query  int     false  "Máximo (default 20, max 100)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ListResponse[entity.StockItem]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var req dto.StockListRequest
	if err := bindQuery(c, &req); err != nil {
		return respondError(c, err)
	}
	page := pageParams(c)
	items, err := h.stock.List(c.UserContext(), usecase.StockFilter(req, page))
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, items, page)
}

// Create godoc
// @Summary      Crear ítem de stock
// @Description  Con opening_quantity_kg > 0 registra el saldo inicial como ajuste manual con su costo.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockItemRequest  true  "Ítem"
// @Success      201  {object}  entity.StockItem
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStockItemRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	item, err := h.trace.CreateStockItem(c.UserContext(), inventory.CreateStockItemInput{
		Kind:            entity.StockKind(req.Kind),
		Variety:         entity.BeanVariety(req.Variety),
		Location:        req.Location,
		OpeningQuantity: req.OpeningQuantityKg,
		OpeningCost:     req.OpeningCostPerKg,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Get devuelve un ítem de stock.
// GET /api/stock/:id
func (h *StockHandler) Get(c *fiber.Ctx) error {
	item, err := h.stock.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// Update cambia la ubicación. La cantidad solo cambia por el ledger.
// PATCH /api/stock/:id
func (h *StockHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateStockItemRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	item, err := h.stock.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// Delete elimina un ítem con saldo cero.
// DELETE /api/stock/:id
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	if err := h.stock.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CostBasis godoc
// @Summary      Costo base por kg
// @Description  Costo promedio ponderado resuelto recorriendo la trazabilidad. 422 si la trazabilidad está rota.
// @Tags         stock
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.CostBasisResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/cost-basis [get]
func (h *StockHandler) CostBasis(c *fiber.Ctx) error {
	res, err := h.trace.GetCostBasis(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CostBasisResponse{
		StockItemID: res.StockItemID,
		QuantityKg:  res.Quantity,
		CostPerKg:   res.CostPerKg,
		Value:       res.Value,
	})
}

// Lineage godoc
// @Summary      Árbol de trazabilidad
// @Tags         stock
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  lineage.Node
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/lineage [get]
func (h *StockHandler) Lineage(c *fiber.Ctx) error {
	node, err := h.trace.GetLineage(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(node)
}

// Ledger lista los movimientos del ítem en orden cronológico.
// GET /api/stock/:id/ledger
func (h *StockHandler) Ledger(c *fiber.Ctx) error {
	entries, err := h.trace.LedgerEntries(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []*entity.LedgerEntry{}
	}
	return c.JSON(entries)
}

// Verify compara la cantidad del ítem con la suma de su ledger.
// GET /api/stock/:id/verify
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	out, err := h.trace.VerifyStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out[0])
}

// VerifyAll verifica todos los ítems.
// GET /api/stock/verify
func (h *StockHandler) VerifyAll(c *fiber.Ctx) error {
	out, err := h.trace.VerifyStock(c.UserContext(), "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual
// @Description  Merma, conteo físico o corrección. unit_cost solo en ajustes positivos.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del ítem"
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201  {object}  entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustStockRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	entry, err := h.trace.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		StockItemID: c.Params("id"),
		Delta:       req.DeltaKg,
		Reason:      req.Reason,
		UnitCost:    req.UnitCost,
		Correcting:  req.Correcting,
		AdjustedAt:  orZero(req.AdjustedAt),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UnitEconomics godoc
// @Summary      HPP por paquete
// @Tags         stock
// @Produce      json
// @Param        id                 path   string  true   "ID del ítem"
// @Param        packaging_id       query  string  false  "Empaque del catálogo"
// @Param        packaging_size_kg  query  string  false  "Tamaño si no hay packaging_id"
// @Param        packaging_cost     query  string  false  "Costo del empaque si no hay packaging_id"
// @Param        other_cost_per_kg  query  string  false  "Otros costos por kg"
// @Success      200  {object}  valuation.UnitEconomics
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/unit-economics [get]
func (h *StockHandler) UnitEconomics(c *fiber.Ctx) error {
	var req dto.UnitEconomicsRequest
	if err := bindQuery(c, &req); err != nil {
		return respondError(c, err)
	}
	in := inventory.UnitEconomicsInput{StockItemID: c.Params("id"), PackagingID: req.PackagingID}
	var err error
	if in.PackagingSizeKg, err = parseDecimal("packaging_size_kg", req.PackagingSizeKg); err != nil {
		return respondError(c, err)
	}
	if in.PackagingCost, err = parseDecimal("packaging_cost", req.PackagingCost); err != nil {
		return respondError(c, err)
	}
	if in.OtherCostPerKg, err = parseDecimal("other_cost_per_kg", req.OtherCostPerKg); err != nil {
		return respondError(c, err)
	}
	res, err := h.trace.GetUnitEconomics(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ByOrigin godoc
// @Summary      Movimientos de un evento
// @Description  Lista las entradas de ledger producidas por una recepción, tostión, mezcla o venta.
// @Tags         ledger
// @Produce      json
// @Param        origin_type  query  string  true  "purchase_receipt | roast_output | roast_consumption | blend_output | blend_consumption | sale_consumption"
// @Param        ref_id       query  string  true  "ID del evento"
// @Success      200  {array}   entity.LedgerEntry
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *StockHandler) ByOrigin(c *fiber.Ctx) error {
	var req dto.LedgerByOriginRequest
	if err := bindQuery(c, &req); err != nil {
		return respondError(c, err)
	}
	entries, err := h.trace.EntriesByOrigin(c.UserContext(), entity.OriginType(req.OriginType), req.RefID)
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []*entity.LedgerEntry{}
	}
	return c.JSON(entries)
}
