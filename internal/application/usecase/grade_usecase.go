package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// GradeUseCase registra la clasificación física de lotes recibidos contra una orden de compra.
type GradeUseCase struct {
	crud[*entity.GreenBeanGrade]
}

// NewGradeUseCase construye el caso de uso.
func NewGradeUseCase(store repository.Store) *GradeUseCase {
	return &GradeUseCase{crud: newCRUD(store, repository.Tx.Grades)}
}

// Create registra la clasificación. La orden debe existir e incluir la variedad.
func (uc *GradeUseCase) Create(ctx context.Context, in dto.GradeRequest) (*entity.GreenBeanGrade, error) {
	grade := &entity.GreenBeanGrade{CreatedAt: uc.now()}
	applyGrade(grade, in, uc.orNow(in.GradingDate))
	return uc.create(ctx, grade, func(tx repository.Tx) error {
		return gradeMatchesOrder(ctx, tx, grade)
	})
}

// Update reemplaza la clasificación completa.
func (uc *GradeUseCase) Update(ctx context.Context, id string, in dto.GradeRequest) (*entity.GreenBeanGrade, error) {
	return uc.update(ctx, id, func(tx repository.Tx, g *entity.GreenBeanGrade) error {
		applyGrade(g, in, uc.orNow(in.GradingDate))
		return gradeMatchesOrder(ctx, tx, g)
	})
}

func applyGrade(g *entity.GreenBeanGrade, in dto.GradeRequest, at time.Time) {
	g.PurchaseOrderID = in.PurchaseOrderID
	g.BatchID = in.BatchID
	g.Variety = entity.BeanVariety(in.Variety)
	g.GradingDate = at
	g.Status = entity.GradeStatus(in.Status)
	g.Analysis = in.Analysis
	g.Notes = in.Notes
}

func gradeMatchesOrder(ctx context.Context, tx repository.Tx, g *entity.GreenBeanGrade) error {
	po, err := tx.PurchaseOrders().Get(ctx, g.PurchaseOrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError("purchase_order_id", "orden %s no existe", g.PurchaseOrderID)
	}
	if err != nil {
		return err
	}
	for _, l := range po.LineItems {
		if l.Variety == g.Variety {
			return nil
		}
	}
	return domain.NewValidationError("variety", "la orden %s no incluye %s", po.ID, g.Variety)
}
