package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
)

// Estado de una tarea.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Valid indica si el estado es conocido.
func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

// Prioridad de una tarea.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Rank ordena las prioridades de mayor a menor (alta = 0).
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return -1
}

// Todo es una tarea operativa del equipo (revisar un lote, llamar a un proveedor, ...).
type Todo struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Status     TaskStatus   `json:"status"`
	Priority   TaskPriority `json:"priority"`
	DueDate    *time.Time   `json:"due_date,omitempty"`
	AssignedTo string       `json:"assigned_to,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (t *Todo) RecordID() string        { return t.ID }
func (t *Todo) SetRecordID(id string)   { t.ID = id }
func (t *Todo) BusinessDate() time.Time { return t.CreatedAt }

func (t *Todo) Attrs() map[string]string {
	return map[string]string{
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"assigned_to": t.AssignedTo,
	}
}

// Overdue indica si la tarea sigue abierta con la fecha límite ya vencida.
func (t *Todo) Overdue(now time.Time) bool {
	return t.Status != TaskDone && t.DueDate != nil && t.DueDate.Before(now)
}

func (t *Todo) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return domain.NewValidationError("text", "es requerido")
	}
	if !t.Status.Valid() {
		return domain.NewValidationError("status", "estado desconocido %q", t.Status)
	}
	if t.Priority.Rank() < 0 {
		return domain.NewValidationError("priority", "prioridad desconocida %q", t.Priority)
	}
	return nil
}
