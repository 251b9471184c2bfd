// Package ledger implementa el Warehouse Ledger: cada movimiento de inventario es una entrada
// inmutable con origen tipado, y es la única vía para modificar StockItem.Quantity.
package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AppendOptions ajusta una inserción en el ledger.
type AppendOptions struct {
	// Correcting permite dejar el saldo en negativo; solo válido con origen ManualAdjustment.
	Correcting bool
	// OccurredAt fija la fecha del movimiento; por defecto time.Now().UTC().
	OccurredAt time.Time
}

// Append registra un movimiento sobre un ítem de stock dentro de tx. Bloquea el ítem,
// valida el saldo resultante, inserta la entrada y refresca la cantidad materializada.
// Debe llamarse dentro de Store.Run para que entrada y cantidad se confirmen juntas.
func Append(ctx context.Context, tx repository.Tx, stockItemID string, delta decimal.Decimal, origin entity.Origin, opts AppendOptions) (*entity.LedgerEntry, error) {
	at := opts.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := &entity.LedgerEntry{
		StockItemID: stockItemID,
		Delta:       delta,
		Origin:      origin,
		Correcting:  opts.Correcting,
		OccurredAt:  at,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	item, err := tx.Stock().GetForUpdate(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	balance := item.Quantity.Add(delta)
	if balance.IsNegative() && !opts.Correcting {
		return nil, &domain.InsufficientStockError{
			StockItemID: stockItemID,
			Available:   item.Quantity,
			Requested:   delta.Neg(),
		}
	}
	entry.BalanceAfter = balance

	if err := tx.Ledger().Insert(ctx, entry); err != nil {
		return nil, err
	}
	if err := tx.Stock().ApplyQuantity(ctx, stockItemID, balance, at); err != nil {
		return nil, err
	}
	return entry, nil
}

// EntriesFor devuelve las entradas del ítem en orden cronológico (Seq ascendente).
func EntriesFor(ctx context.Context, tx repository.Tx, stockItemID string) ([]*entity.LedgerEntry, error) {
	return tx.Ledger().ListByStockItem(ctx, stockItemID)
}

// EntriesByOrigin devuelve las entradas producidas por un evento de origen.
func EntriesByOrigin(ctx context.Context, tx repository.Tx, originType entity.OriginType, refID string) ([]*entity.LedgerEntry, error) {
	return tx.Ledger().ListByOrigin(ctx, originType, refID)
}

// Verification compara la cantidad materializada con la suma del ledger.
type Verification struct {
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity_kg"`
	LedgerSum   decimal.Decimal `json:"ledger_sum_kg"`
	Entries     int             `json:"entries"`
	Consistent  bool            `json:"consistent"`
}

// Verify recalcula Σ deltas de un ítem y lo compara con su cantidad.
func Verify(ctx context.Context, tx repository.Tx, stockItemID string) (Verification, error) {
	item, err := tx.Stock().Get(ctx, stockItemID)
	if err != nil {
		return Verification{}, err
	}
	entries, err := tx.Ledger().ListByStockItem(ctx, stockItemID)
	if err != nil {
		return Verification{}, err
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Delta)
	}
	return Verification{
		StockItemID: stockItemID,
		Quantity:    item.Quantity,
		LedgerSum:   sum,
		Entries:     len(entries),
		Consistent:  sum.Equal(item.Quantity),
	}, nil
}
