package embedded

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cafetal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRows(t *testing.T, s *SQLiteStore, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestSQLiteStore_EscribeSoloLoQueCambia(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	seedExpenses(t, s)
	assert.Equal(t, 4, countRows(t, s, `SELECT COUNT(*) FROM records WHERE collection = ?`, colExpenses))

	var ids []string
	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		all, err := tx.Expenses().List(ctx, repository.Filter{})
		for _, e := range all {
			ids = append(ids, e.ID)
		}
		return err
	}))
	require.Len(t, ids, 4)

	var work *state
	s.onCommit = func(ctx context.Context, st *state) error {
		work = st
		return s.persist(ctx, st)
	}
	require.NoError(t, s.Run(ctx, func(tx repository.Tx) error {
		if _, err := tx.Expenses().Update(ctx, ids[0], func(e *entity.Expense) error {
			e.Description = "arriendo bodega"
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Expenses().Remove(ctx, ids[1]); err != nil {
			return err
		}
		return tx.Ledger().Insert(ctx, &entity.LedgerEntry{StockItemID: "a", Delta: decimal.NewFromInt(5), Origin: entity.PurchaseReceipt("po", 0)})
	}))

	refs, entries := work.changes()
	assert.ElementsMatch(t, []recordRef{{colExpenses, ids[0]}, {colExpenses, ids[1]}}, refs)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq)

	assert.Equal(t, 3, countRows(t, s, `SELECT COUNT(*) FROM records WHERE collection = ?`, colExpenses))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM records WHERE id = ?`, ids[1]))
	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM ledger_entries`))

	// Un Run sin cambios no toca la base.
	require.NoError(t, s.Run(ctx, func(tx repository.Tx) error { return nil }))
	refs, entries = work.changes()
	assert.Empty(t, refs)
	assert.Empty(t, entries)

	require.NoError(t, s.Run(ctx, func(tx repository.Tx) error {
		return tx.Ledger().Insert(ctx, &entity.LedgerEntry{StockItemID: "a", Delta: decimal.NewFromInt(-2), Origin: entity.SaleConsumption("s")})
	}))
	assert.Equal(t, 2, countRows(t, s, `SELECT COUNT(*) FROM ledger_entries`))
	assert.Equal(t, 2, countRows(t, s, `SELECT MAX(seq) FROM ledger_entries`))
}

func TestSQLiteStore_CommitRespetaContexto(t *testing.T) {
	s := openTestSQLite(t)
	work := s.published().clone()
	work.touch(colPackaging, "p-1")
	work.Records[colPackaging]["p-1"] = []byte(`{"id":"p-1","name":"Bolsa"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.persist(ctx, work)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM records`))
}
