package usecase

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// StockUseCase consulta y mantiene los datos descriptivos de los ítems de stock.
// El alta con saldo y todo cambio de cantidad pasan por el ledger (inventory.TraceabilityUseCase).
type StockUseCase struct {
	crud[*entity.StockItem]
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(store repository.Store) *StockUseCase {
	return &StockUseCase{crud: newCRUD(store, func(tx repository.Tx) repository.Records[*entity.StockItem] {
		return tx.Stock()
	})}
}

// Update cambia la ubicación. Cantidad y versión no se tocan.
func (uc *StockUseCase) Update(ctx context.Context, id string, in dto.UpdateStockItemRequest) (*entity.StockItem, error) {
	return uc.update(ctx, id, func(_ repository.Tx, s *entity.StockItem) error {
		if in.Location != nil {
			s.Location = *in.Location
		}
		s.LastUpdated = uc.now()
		return nil
	})
}

// StockFilter arma el filtro de listado a partir de la consulta.
func StockFilter(in dto.StockListRequest, page dto.PageRequest) repository.Filter {
	attrs := map[string]string{}
	if in.Kind != "" {
		attrs["kind"] = in.Kind
	}
	if in.Variety != "" {
		attrs["variety"] = in.Variety
	}
	if in.Location != "" {
		attrs["location"] = in.Location
	}
	return repository.Filter{Attrs: attrs, Limit: page.Limit, Offset: page.Offset}
}
