package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	crud[*entity.Supplier]
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(store repository.Store) *SupplierUseCase {
	return &SupplierUseCase{crud: newCRUD(store, repository.Tx.Suppliers)}
}

// Create crea un nuevo proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Origin:        in.Origin,
		Specialties:   toVarieties(in.Specialties),
		CreatedAt:     uc.now(),
	}
	return uc.create(ctx, supplier, nil)
}

// Update actualiza los campos presentes en la petición.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*entity.Supplier, error) {
	return uc.update(ctx, id, func(_ repository.Tx, s *entity.Supplier) error {
		if in.Name != nil {
			s.Name = *in.Name
		}
		if in.ContactPerson != nil {
			s.ContactPerson = *in.ContactPerson
		}
		if in.Phone != nil {
			s.Phone = *in.Phone
		}
		if in.Email != nil {
			s.Email = *in.Email
		}
		if in.Origin != nil {
			s.Origin = *in.Origin
		}
		if in.Specialties != nil {
			s.Specialties = toVarieties(in.Specialties)
		}
		return nil
	})
}

// Delete elimina el proveedor si no tiene órdenes de compra.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.store.Run(ctx, func(tx repository.Tx) error {
		orders, err := tx.PurchaseOrders().List(ctx, repository.Filter{Attrs: map[string]string{"supplier_id": id}, Limit: 1})
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			return fmt.Errorf("el proveedor %s tiene órdenes de compra: %w", id, domain.ErrConflict)
		}
		return tx.Suppliers().Remove(ctx, id)
	})
}

func toVarieties(in []string) []entity.BeanVariety {
	if in == nil {
		return nil
	}
	out := make([]entity.BeanVariety, 0, len(in))
	for _, v := range in {
		out = append(out, entity.BeanVariety(v))
	}
	return out
}
