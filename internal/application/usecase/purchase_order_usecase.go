package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/pkg/logger"
)

// PurchaseOrderUseCase gestiona las órdenes de compra y su máquina de estados:
// pending → approved | rejected, approved → completed. Las recepciones (que mueven
// stock) viven en inventory.TraceabilityUseCase.
type PurchaseOrderUseCase struct {
	crud[*entity.PurchaseOrder]
	log *logger.Logger
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(store repository.Store, log *logger.Logger) *PurchaseOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseOrderUseCase{
		crud: newCRUD(store, repository.Tx.PurchaseOrders),
		log:  log.Component("purchase_orders"),
	}
}

// Create registra una orden pendiente para un proveedor existente.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	now := uc.now()
	po := &entity.PurchaseOrder{
		SupplierID:           in.SupplierID,
		OrderDate:            uc.orNow(in.OrderDate),
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		LineItems:            toPOLines(in.LineItems),
		Status:               entity.POStatusPending,
		Notes:                in.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return uc.create(ctx, po, func(tx repository.Tx) error {
		return supplierExists(ctx, tx, in.SupplierID)
	})
}

// Update cambia fecha esperada y notas; las líneas solo mientras la orden está pendiente.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, id string, in dto.UpdatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	return uc.update(ctx, id, func(_ repository.Tx, po *entity.PurchaseOrder) error {
		if in.LineItems != nil {
			if po.Status != entity.POStatusPending {
				return domain.NewValidationError("line_items", "la orden %s ya no está pendiente", po.Status)
			}
			po.LineItems = toPOLines(in.LineItems)
		}
		if in.ExpectedDeliveryDate != nil {
			po.ExpectedDeliveryDate = in.ExpectedDeliveryDate
		}
		if in.Notes != nil {
			po.Notes = *in.Notes
		}
		po.UpdatedAt = uc.now()
		return nil
	})
}

// UpdateStatus aplica una transición de estado. Completar a mano una orden aprobada
// cierra lo pendiente sin recibirlo.
func (uc *PurchaseOrderUseCase) UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus) (*entity.PurchaseOrder, error) {
	var from entity.PurchaseOrderStatus
	po, err := uc.update(ctx, id, func(_ repository.Tx, po *entity.PurchaseOrder) error {
		from = po.Status
		if err := po.TransitionTo(status); err != nil {
			return err
		}
		po.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("purchase_order_id", id).Str("from", string(from)).Str("to", string(status)).Msg("orden de compra actualizada")
	return po, nil
}

// Delete elimina órdenes pendientes o rechazadas; las aprobadas o completas tienen recepciones.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.store.Run(ctx, func(tx repository.Tx) error {
		po, err := tx.PurchaseOrders().Get(ctx, id)
		if err != nil {
			return err
		}
		if po.Status != entity.POStatusPending && po.Status != entity.POStatusRejected {
			return fmt.Errorf("orden %s en estado %s: %w", id, po.Status, domain.ErrConflict)
		}
		return tx.PurchaseOrders().Remove(ctx, id)
	})
}

func toPOLines(in []dto.POLineRequest) []entity.POLineItem {
	out := make([]entity.POLineItem, 0, len(in))
	for _, l := range in {
		out = append(out, entity.POLineItem{
			Variety:   entity.BeanVariety(l.Variety),
			Quantity:  l.QuantityKg,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}

// supplierExists traduce un proveedor inexistente en error de validación del campo.
func supplierExists(ctx context.Context, tx repository.Tx, id string) error {
	if _, err := tx.Suppliers().Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("supplier_id", "proveedor %s no existe", id)
		}
		return err
	}
	return nil
}
