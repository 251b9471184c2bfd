package embedded

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

func seedExpenses(t *testing.T, s repository.Store) {
	t.Helper()
	err := s.Run(context.Background(), func(tx repository.Tx) error {
		for i, cat := range []entity.ExpenseCategory{entity.ExpenseRent, entity.ExpenseSalary, entity.ExpenseRent, entity.ExpenseUtilities} {
			_, err := tx.Expenses().Create(context.Background(), &entity.Expense{
				ExpenseDate: day(i + 1),
				Description: "gasto",
				Category:    cat,
				Amount:      decimal.NewFromInt(int64(1000 * (i + 1))),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var id string
	err := s.Run(ctx, func(tx repository.Tx) error {
		var err error
		id, err = tx.Suppliers().Create(ctx, &entity.Supplier{Name: "Finca La Esperanza", Origin: "Huila"})
		return err
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = s.Run(ctx, func(tx repository.Tx) error {
		_, err := tx.Suppliers().Create(ctx, &entity.Supplier{ID: id, Name: "Otra"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = s.Run(ctx, func(tx repository.Tx) error {
		sup, err := tx.Suppliers().Update(ctx, id, func(sup *entity.Supplier) error {
			sup.Phone = "+57 300"
			sup.ID = "cambiado"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, id, sup.ID)
		return nil
	})
	require.NoError(t, err)

	// una actualización que deja el registro inválido no se guarda
	err = s.Run(ctx, func(tx repository.Tx) error {
		_, err := tx.Suppliers().Update(ctx, id, func(sup *entity.Supplier) error {
			sup.Name = ""
			return nil
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = s.View(ctx, func(tx repository.Tx) error {
		sup, err := tx.Suppliers().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Finca La Esperanza", sup.Name)
		assert.Equal(t, "+57 300", sup.Phone)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Run(ctx, func(tx repository.Tx) error { return tx.Suppliers().Remove(ctx, id) }))
	err = s.View(ctx, func(tx repository.Tx) error {
		_, err := tx.Suppliers().Get(ctx, id)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_ListFiltraYPagina(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedExpenses(t, s)

	err := s.View(ctx, func(tx repository.Tx) error {
		rent, err := tx.Expenses().List(ctx, repository.Filter{Attrs: map[string]string{"category": "rent"}})
		require.NoError(t, err)
		require.Len(t, rent, 2)
		assert.True(t, rent[0].ExpenseDate.Before(rent[1].ExpenseDate))

		from, to := day(2), day(3)
		ranged, err := tx.Expenses().List(ctx, repository.Filter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Len(t, ranged, 2)

		page, err := tx.Expenses().List(ctx, repository.Filter{Limit: 2, Offset: 3})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, entity.ExpenseUtilities, page[0].Category)

		empty, err := tx.Expenses().List(ctx, repository.Filter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_RollbackYSoloLectura(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Run(ctx, func(tx repository.Tx) error {
		if _, err := tx.Suppliers().Create(ctx, &entity.Supplier{Name: "Descartado"}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	err = s.View(ctx, func(tx repository.Tx) error {
		all, err := tx.Suppliers().List(ctx, repository.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = tx.Suppliers().Create(ctx, &entity.Supplier{Name: "x"})
		return err
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestStockRecords_CantidadSoloPorLedger(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Run(ctx, func(tx repository.Tx) error {
		_, err := tx.Stock().Create(ctx, &entity.StockItem{
			Kind: entity.KindGreenBean, Variety: entity.VarietyArabica, Location: "A", Quantity: decimal.NewFromInt(5),
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var id string
	err = s.Run(ctx, func(tx repository.Tx) error {
		var err error
		id, err = tx.Stock().Create(ctx, &entity.StockItem{Kind: entity.KindGreenBean, Variety: entity.VarietyArabica, Location: "A"})
		if err != nil {
			return err
		}
		return tx.Stock().ApplyQuantity(ctx, id, decimal.NewFromInt(12), day(4))
	})
	require.NoError(t, err)

	err = s.Run(ctx, func(tx repository.Tx) error {
		item, err := tx.Stock().Update(ctx, id, func(item *entity.StockItem) error {
			item.Location = "B"
			item.Quantity = decimal.NewFromInt(999)
			item.Version = 42
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "B", item.Location)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, int64(1), item.Version)
		return nil
	})
	require.NoError(t, err)

	err = s.Run(ctx, func(tx repository.Tx) error { return tx.Stock().Remove(ctx, id) })
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = s.View(ctx, func(tx repository.Tx) error {
		_, err := tx.Stock().GetForUpdate(ctx, id)
		return err
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestLedgerRecords_OrdenPorSecuencia(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.Run(ctx, func(tx repository.Tx) error {
		for _, e := range []*entity.LedgerEntry{
			{StockItemID: "a", Delta: decimal.NewFromInt(3), Origin: entity.PurchaseReceipt("po", 0)},
			{StockItemID: "b", Delta: decimal.NewFromInt(4), Origin: entity.PurchaseReceipt("po", 1)},
			{StockItemID: "a", Delta: decimal.NewFromInt(-1), Origin: entity.SaleConsumption("s1")},
		} {
			if err := tx.Ledger().Insert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx repository.Tx) error {
		a, err := tx.Ledger().ListByStockItem(ctx, "a")
		require.NoError(t, err)
		require.Len(t, a, 2)
		assert.Equal(t, int64(1), a[0].Seq)
		assert.Equal(t, int64(3), a[1].Seq)

		sale, err := tx.Ledger().ListByOrigin(ctx, entity.OriginSaleConsumption, "s1")
		require.NoError(t, err)
		require.Len(t, sale, 1)
		assert.Equal(t, "a", sale[0].StockItemID)
		return nil
	})
	require.NoError(t, err)
}

func TestSQLiteStore_RecargaEstado(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "cafetal.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	seedExpenses(t, s)
	err = s.Run(ctx, func(tx repository.Tx) error {
		return tx.Ledger().Insert(ctx, &entity.LedgerEntry{StockItemID: "a", Delta: decimal.NewFromInt(3), Origin: entity.PurchaseReceipt("po", 0)})
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	err = reopened.Run(ctx, func(tx repository.Tx) error {
		all, err := tx.Expenses().List(ctx, repository.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)

		e := &entity.LedgerEntry{StockItemID: "a", Delta: decimal.NewFromInt(-1), Origin: entity.SaleConsumption("s")}
		require.NoError(t, tx.Ledger().Insert(ctx, e))
		assert.Equal(t, int64(2), e.Seq)
		return nil
	})
	require.NoError(t, err)
}
