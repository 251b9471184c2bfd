package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// ── Empaques ──────────────────────────────────────────────────────────────────

// PackagingHandler maneja el catálogo de empaques usado en el HPP.
type PackagingHandler struct {
	uc *usecase.PackagingUseCase
}

func NewPackagingHandler(uc *usecase.PackagingUseCase) *PackagingHandler {
	return &PackagingHandler{uc: uc}
}

// List GET /api/packaging?name=
func (h *PackagingHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "name")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create POST /api/packaging
func (h *PackagingHandler) Create(c *fiber.Ctx) error {
	var req dto.PackagingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/packaging/:id
func (h *PackagingHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/packaging/:id
func (h *PackagingHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdatePackagingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/packaging/:id
func (h *PackagingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Alertas de stock ──────────────────────────────────────────────────────────

// AlertSettingHandler maneja los umbrales de stock bajo.
type AlertSettingHandler struct {
	uc *usecase.AlertSettingUseCase
}

func NewAlertSettingHandler(uc *usecase.AlertSettingUseCase) *AlertSettingHandler {
	return &AlertSettingHandler{uc: uc}
}

// List GET /api/alert-settings?variety=&kind=
func (h *AlertSettingHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "variety", "kind")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create POST /api/alert-settings. 409 si ya existe una alerta para la variedad y el tipo.
func (h *AlertSettingHandler) Create(c *fiber.Ctx) error {
	var req dto.AlertSettingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/alert-settings/:id
func (h *AlertSettingHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/alert-settings/:id (solo el umbral)
func (h *AlertSettingHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAlertSettingRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateThreshold(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/alert-settings/:id
func (h *AlertSettingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// ExpenseHandler maneja los gastos operativos del negocio.
type ExpenseHandler struct {
	uc *usecase.ExpenseUseCase
}

func NewExpenseHandler(uc *usecase.ExpenseUseCase) *ExpenseHandler {
	return &ExpenseHandler{uc: uc}
}

// List GET /api/expenses?category=&from=&to=
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "category")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Create POST /api/expenses
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	var req dto.ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/expenses/:id
func (h *ExpenseHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/expenses/:id
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	var req dto.ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Tareas ────────────────────────────────────────────────────────────────────

// TaskHandler maneja el tablero de tareas del equipo.
type TaskHandler struct {
	uc *usecase.TaskUseCase
}

func NewTaskHandler(uc *usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// List GET /api/tasks?status=&priority=&assigned_to=&include_done=true
func (h *TaskHandler) List(c *fiber.Ctx) error {
	f, page, err := listFilter(c, "status", "priority", "assigned_to")
	if err != nil {
		return respondError(c, err)
	}
	includeDone := c.QueryBool("include_done", false) || f.Attrs["status"] == string(entity.TaskDone)
	out, err := h.uc.Board(c.UserContext(), f, includeDone)
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, page)
}

// Overdue GET /api/tasks/overdue
func (h *TaskHandler) Overdue(c *fiber.Ctx) error {
	out, err := h.uc.Overdue(c.UserContext(), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return listJSON(c, out, dto.PageRequest{Limit: len(out)})
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus POST /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTaskStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), entity.TaskStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
