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

// CuppingUseCase registra sesiones de catación sobre tostiones existentes.
type CuppingUseCase struct {
	crud[*entity.CuppingSession]
}

// NewCuppingUseCase construye el caso de uso.
func NewCuppingUseCase(store repository.Store) *CuppingUseCase {
	return &CuppingUseCase{crud: newCRUD(store, repository.Tx.Cuppings)}
}

// Create registra la sesión; la tostión referenciada debe existir.
func (uc *CuppingUseCase) Create(ctx context.Context, in dto.CuppingRequest) (*entity.CuppingSession, error) {
	session := &entity.CuppingSession{CreatedAt: uc.now()}
	applyCupping(session, in, uc.orNow(in.SessionDate))
	return uc.create(ctx, session, func(tx repository.Tx) error {
		return roastExists(ctx, tx, session.RoastEventID)
	})
}

// Update reemplaza la sesión completa.
func (uc *CuppingUseCase) Update(ctx context.Context, id string, in dto.CuppingRequest) (*entity.CuppingSession, error) {
	return uc.update(ctx, id, func(tx repository.Tx, c *entity.CuppingSession) error {
		applyCupping(c, in, uc.orNow(in.SessionDate))
		return roastExists(ctx, tx, c.RoastEventID)
	})
}

// ByRoast lista las cataciones de una tostión.
func (uc *CuppingUseCase) ByRoast(ctx context.Context, roastID string) ([]*entity.CuppingSession, error) {
	return uc.List(ctx, repository.Filter{Attrs: map[string]string{"roast_event_id": roastID}})
}

func applyCupping(c *entity.CuppingSession, in dto.CuppingRequest, at time.Time) {
	c.RoastEventID = in.RoastEventID
	c.SessionDate = at
	c.RoastLevel = entity.RoastLevel(in.RoastLevel)
	c.Scores = in.Scores
	c.Defects = in.Defects
	c.Notes = in.Notes
}

func roastExists(ctx context.Context, tx repository.Tx, id string) error {
	if _, err := tx.Roasts().Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("roast_event_id", "tostión %s no existe", id)
		}
		return err
	}
	return nil
}

// ToCuppingResponse agrega el puntaje final.
func ToCuppingResponse(c *entity.CuppingSession) dto.CuppingResponse {
	return dto.CuppingResponse{CuppingSession: c, FinalScore: c.FinalScore()}
}
