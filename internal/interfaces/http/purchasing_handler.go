package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// ── Proveedores ───────────────────────────────────────────────────────────────

// SupplierHandler maneja el CRUD de proveedores.
type SupplierHandler struct {
	uc *usecase.SupplierUseCase
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(uc *usecase.SupplierUseCase) *SupplierHandler {
	return &SupplierHandler{uc: uc}
}

// List GET /api/suppliers?name=&origin=
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "name", "origin")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "Proveedor"
// @Success      201  {object}  entity.Supplier
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSupplierRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/suppliers/:id
func (h *SupplierHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/suppliers/:id
func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSupplierRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/suppliers/:id. 409 si el proveedor tiene órdenes de compra.
func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Órdenes de compra ─────────────────────────────────────────────────────────

// PurchaseOrderHandler maneja las órdenes de compra y su recepción.
type PurchaseOrderHandler struct {
	uc    *usecase.PurchaseOrderUseCase
	trace *inventory.TraceabilityUseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *usecase.PurchaseOrderUseCase, trace *inventory.TraceabilityUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc, trace: trace}
}

// List GET /api/purchase-orders?supplier_id=&status=&from=&to=
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "supplier_id", "status")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  La orden se crea en estado pending.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Orden"
// @Success      201  {object}  entity.PurchaseOrder
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePurchaseOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/purchase-orders/:id. Las líneas solo cambian mientras la orden está pending.
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdatePurchaseOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la orden
// @Description  pending → approved | rejected; approved → completed.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la orden"
// @Param        body  body  dto.UpdatePOStatusRequest  true  "Estado"
// @Success      200  {object}  entity.PurchaseOrder
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/status [post]
func (h *PurchaseOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdatePOStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), entity.PurchaseOrderStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/purchase-orders/:id. Solo órdenes pending o rejected.
func (h *PurchaseOrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receive godoc
// @Summary      Recibir grano verde
// @Description  Registra la entrada de una línea de una orden aprobada. Completa la orden al recibir todo.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseRequest  true  "Recepción"
// @Success      201  {object}  dto.ReceiptResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receipts [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	var req dto.ReceivePurchaseRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.trace.ReceivePurchase(c.UserContext(), inventory.ReceivePurchaseInput{
		PurchaseOrderID: c.Params("id"),
		LineItemIndex:   req.LineItemIndex,
		Quantity:        req.QuantityKg,
		StockItemID:     req.StockItemID,
		Location:        req.Location,
		ReceivedAt:      orZero(req.ReceivedAt),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiptResponse{
		Entry:         res.Entry,
		StockItem:     res.StockItem,
		PurchaseOrder: res.PurchaseOrder,
	})
}

// ── Clasificación ─────────────────────────────────────────────────────────────

// GradeHandler maneja la clasificación física del grano verde recibido.
type GradeHandler struct {
	uc *usecase.GradeUseCase
}

// NewGradeHandler construye el handler.
func NewGradeHandler(uc *usecase.GradeUseCase) *GradeHandler {
	return &GradeHandler{uc: uc}
}

// List GET /api/grades?purchase_order_id=&variety=&status=
func (h *GradeHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "purchase_order_id", "variety", "status")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create POST /api/grades
func (h *GradeHandler) Create(c *fiber.Ctx) error {
	var req dto.GradeRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/grades/:id
func (h *GradeHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/grades/:id
func (h *GradeHandler) Update(c *fiber.Ctx) error {
	var req dto.GradeRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/grades/:id
func (h *GradeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
