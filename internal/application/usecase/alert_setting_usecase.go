package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// AlertSettingUseCase administra los umbrales de stock bajo (uno por variedad y tipo).
type AlertSettingUseCase struct {
	crud[*entity.AlertSetting]
}

// NewAlertSettingUseCase construye el caso de uso.
func NewAlertSettingUseCase(store repository.Store) *AlertSettingUseCase {
	return &AlertSettingUseCase{crud: newCRUD(store, repository.Tx.AlertSettings)}
}

// Create registra el umbral; ErrConflict si ya existe uno para la variedad y tipo.
func (uc *AlertSettingUseCase) Create(ctx context.Context, in dto.AlertSettingRequest) (*entity.AlertSetting, error) {
	setting := &entity.AlertSetting{
		Variety:     entity.BeanVariety(in.Variety),
		Kind:        entity.StockKind(in.Kind),
		ThresholdKg: in.ThresholdKg,
		CreatedAt:   uc.now(),
	}
	return uc.create(ctx, setting, func(tx repository.Tx) error {
		existing, err := tx.AlertSettings().List(ctx, repository.Filter{Attrs: setting.Attrs(), Limit: 1})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("ya existe una alerta para %s %s: %w", setting.Variety, setting.Kind, domain.ErrConflict)
		}
		return nil
	})
}

// UpdateThreshold cambia el umbral.
func (uc *AlertSettingUseCase) UpdateThreshold(ctx context.Context, id string, in dto.UpdateAlertSettingRequest) (*entity.AlertSetting, error) {
	return uc.update(ctx, id, func(_ repository.Tx, a *entity.AlertSetting) error {
		a.ThresholdKg = in.ThresholdKg
		return nil
	})
}
