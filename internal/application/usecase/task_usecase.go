package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// TaskUseCase casos de uso para las tareas del equipo.
type TaskUseCase struct {
	crud[*entity.Todo]
}

// NewTaskUseCase construye el caso de uso.
func NewTaskUseCase(store repository.Store) *TaskUseCase {
	return &TaskUseCase{crud: newCRUD(store, repository.Tx.Todos)}
}

// Create registra una tarea pendiente; la prioridad por defecto es media.
func (uc *TaskUseCase) Create(ctx context.Context, in dto.TaskRequest) (*entity.Todo, error) {
	todo := &entity.Todo{Status: entity.TaskTodo, Priority: entity.PriorityMedium, CreatedAt: uc.now()}
	uc.apply(todo, in)
	return uc.create(ctx, todo, nil)
}

// Update reemplaza texto, fecha límite, prioridad y responsable. El estado no cambia.
func (uc *TaskUseCase) Update(ctx context.Context, id string, in dto.TaskRequest) (*entity.Todo, error) {
	return uc.update(ctx, id, func(_ repository.Tx, t *entity.Todo) error {
		uc.apply(t, in)
		return nil
	})
}

// UpdateStatus mueve la tarea entre todo, in_progress y done.
func (uc *TaskUseCase) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) (*entity.Todo, error) {
	return uc.update(ctx, id, func(_ repository.Tx, t *entity.Todo) error {
		t.Status = status
		return nil
	})
}

// Board lista las tareas por prioridad (alta primero) y luego por fecha límite; sin fecha al final.
// Las terminadas solo se incluyen si includeDone. La paginación de f se aplica después de ordenar.
func (uc *TaskUseCase) Board(ctx context.Context, f repository.Filter, includeDone bool) ([]*entity.Todo, error) {
	unpaged := f
	unpaged.Limit, unpaged.Offset = 0, 0
	all, err := uc.List(ctx, unpaged)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if includeDone || t.Status != entity.TaskDone {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		switch {
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})
	return repository.Paginate(out, f), nil
}

// Overdue devuelve las tareas abiertas con fecha límite anterior a now.
func (uc *TaskUseCase) Overdue(ctx context.Context, now time.Time) ([]*entity.Todo, error) {
	all, err := uc.List(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	var out []*entity.Todo
	for _, t := range all {
		if t.Overdue(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (uc *TaskUseCase) apply(t *entity.Todo, in dto.TaskRequest) {
	t.Text = in.Text
	t.DueDate = in.DueDate
	t.AssignedTo = in.AssignedTo
	if in.Priority != "" {
		t.Priority = entity.TaskPriority(in.Priority)
	}
}
