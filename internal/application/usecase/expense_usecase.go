package usecase

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// ExpenseUseCase casos de uso CRUD para gastos operativos.
type ExpenseUseCase struct {
	crud[*entity.Expense]
}

// NewExpenseUseCase construye el caso de uso.
func NewExpenseUseCase(store repository.Store) *ExpenseUseCase {
	return &ExpenseUseCase{crud: newCRUD(store, repository.Tx.Expenses)}
}

// Create registra un gasto.
func (uc *ExpenseUseCase) Create(ctx context.Context, in dto.ExpenseRequest) (*entity.Expense, error) {
	expense := &entity.Expense{CreatedAt: uc.now()}
	uc.apply(expense, in)
	return uc.create(ctx, expense, nil)
}

// Update reemplaza el gasto completo.
func (uc *ExpenseUseCase) Update(ctx context.Context, id string, in dto.ExpenseRequest) (*entity.Expense, error) {
	return uc.update(ctx, id, func(_ repository.Tx, e *entity.Expense) error {
		uc.apply(e, in)
		return nil
	})
}

func (uc *ExpenseUseCase) apply(e *entity.Expense, in dto.ExpenseRequest) {
	e.ExpenseDate = uc.orNow(in.ExpenseDate)
	e.Description = in.Description
	e.Category = entity.ExpenseCategory(in.Category)
	e.Amount = in.Amount
}
