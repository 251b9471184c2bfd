package repository

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del ledger (solo inserción).
type LedgerRepository interface {
	// Insert asigna ID y Seq a la entrada y la persiste.
	Insert(ctx context.Context, e *entity.LedgerEntry) error
	// ListByStockItem devuelve las entradas del ítem en orden de Seq.
	ListByStockItem(ctx context.Context, stockItemID string) ([]*entity.LedgerEntry, error)
	ListByOrigin(ctx context.Context, originType entity.OriginType, refID string) ([]*entity.LedgerEntry, error)
}
