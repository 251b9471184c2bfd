package usecase

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// PackagingUseCase casos de uso CRUD para el catálogo de empaques.
type PackagingUseCase struct {
	crud[*entity.Packaging]
}

// NewPackagingUseCase construye el caso de uso.
func NewPackagingUseCase(store repository.Store) *PackagingUseCase {
	return &PackagingUseCase{crud: newCRUD(store, repository.Tx.Packaging)}
}

// Create crea un empaque.
func (uc *PackagingUseCase) Create(ctx context.Context, in dto.PackagingRequest) (*entity.Packaging, error) {
	return uc.create(ctx, &entity.Packaging{
		Name:      in.Name,
		SizeKg:    in.SizeKg,
		Cost:      in.Cost,
		CreatedAt: uc.now(),
	}, nil)
}

// Update actualiza los campos presentes.
func (uc *PackagingUseCase) Update(ctx context.Context, id string, in dto.UpdatePackagingRequest) (*entity.Packaging, error) {
	return uc.update(ctx, id, func(_ repository.Tx, p *entity.Packaging) error {
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.SizeKg != nil {
			p.SizeKg = *in.SizeKg
		}
		if in.Cost != nil {
			p.Cost = *in.Cost
		}
		return nil
	})
}
