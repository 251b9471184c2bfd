package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newItem(t *testing.T, ctx context.Context, store repository.Store) string {
	t.Helper()
	var id string
	err := store.Run(ctx, func(tx repository.Tx) error {
		var err error
		id, err = tx.Stock().Create(ctx, &entity.StockItem{Kind: entity.KindGreenBean, Variety: entity.VarietyArabica, Location: "verde"})
		return err
	})
	require.NoError(t, err)
	return id
}

func appendOne(ctx context.Context, store repository.Store, id string, delta decimal.Decimal, o entity.Origin, opts ledger.AppendOptions) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := store.Run(ctx, func(tx repository.Tx) error {
		e, err := ledger.Append(ctx, tx, id, delta, o, opts)
		out = e
		return err
	})
	return out, err
}

func TestAppend_SaldoYSecuencia(t *testing.T) {
	ctx := context.Background()
	store := embedded.NewMemoryStore()
	id := newItem(t, ctx, store)

	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	e1, err := appendOne(ctx, store, id, dec("100"), entity.PurchaseReceipt("po-1", 0), ledger.AppendOptions{OccurredAt: at})
	require.NoError(t, err)
	e2, err := appendOne(ctx, store, id, dec("-30"), entity.RoastConsumption("r-1"), ledger.AppendOptions{})
	require.NoError(t, err)

	assert.Less(t, e1.Seq, e2.Seq)
	assert.True(t, e1.BalanceAfter.Equal(dec("100")))
	assert.True(t, e2.BalanceAfter.Equal(dec("70")))
	assert.Equal(t, at, e1.OccurredAt)

	err = store.View(ctx, func(tx repository.Tx) error {
		item, err := tx.Stock().Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, item.Quantity.Equal(dec("70")))
		assert.Equal(t, int64(2), item.Version)

		entries, err := ledger.EntriesFor(ctx, tx, id)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, e1.ID, entries[0].ID)

		byOrigin, err := ledger.EntriesByOrigin(ctx, tx, entity.OriginRoastConsumption, "r-1")
		require.NoError(t, err)
		require.Len(t, byOrigin, 1)
		assert.Equal(t, e2.ID, byOrigin[0].ID)

		v, err := ledger.Verify(ctx, tx, id)
		require.NoError(t, err)
		assert.True(t, v.Consistent)
		assert.Equal(t, 2, v.Entries)
		return nil
	})
	require.NoError(t, err)
}

func TestAppend_SinStockFallaYNoEscribe(t *testing.T) {
	ctx := context.Background()
	store := embedded.NewMemoryStore()
	id := newItem(t, ctx, store)
	_, err := appendOne(ctx, store, id, dec("10"), entity.PurchaseReceipt("po-1", 0), ledger.AppendOptions{})
	require.NoError(t, err)

	_, err = appendOne(ctx, store, id, dec("-10.001"), entity.SaleConsumption("s-1"), ledger.AppendOptions{})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Requested.Equal(dec("10.001")))

	// Correcting solo con ajuste manual
	_, err = appendOne(ctx, store, id, dec("-11"), entity.SaleConsumption("s-1"), ledger.AppendOptions{Correcting: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	e, err := appendOne(ctx, store, id, dec("-11"), entity.ManualAdjustment("recuento", nil), ledger.AppendOptions{Correcting: true})
	require.NoError(t, err)
	assert.True(t, e.BalanceAfter.Equal(dec("-1")))

	err = store.View(ctx, func(tx repository.Tx) error {
		entries, err := ledger.EntriesFor(ctx, tx, id)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestAppend_ItemInexistente(t *testing.T) {
	ctx := context.Background()
	store := embedded.NewMemoryStore()
	_, err := appendOne(ctx, store, "no-existe", dec("1"), entity.PurchaseReceipt("po", 0), ledger.AppendOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppend_EnVistaDeSoloLecturaFalla(t *testing.T) {
	ctx := context.Background()
	store := embedded.NewMemoryStore()
	id := newItem(t, ctx, store)
	err := store.View(ctx, func(tx repository.Tx) error {
		_, err := ledger.Append(ctx, tx, id, dec("1"), entity.PurchaseReceipt("po", 0), ledger.AppendOptions{})
		return err
	})
	assert.Error(t, err)
}
