package valuation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture: dos ítems tostados comprados a 60.000 y 40.000 por kg, 100 kg cada uno.
func fixture(t *testing.T) repository.Store {
	t.Helper()
	store := embedded.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Run(ctx, func(tx repository.Tx) error {
		_, err := tx.PurchaseOrders().Create(ctx, &entity.PurchaseOrder{
			ID: "po-1", SupplierID: "sup", OrderDate: time.Now(), Status: entity.POStatusApproved,
			LineItems: []entity.POLineItem{
				{Variety: entity.VarietyArabica, Quantity: dec("100"), UnitPrice: dec("60000")},
				{Variety: entity.VarietyRobusta, Quantity: dec("100"), UnitPrice: dec("40000")},
			},
		})
		if err != nil {
			return err
		}
		for i, id := range []string{"a", "r"} {
			if _, err := tx.Stock().Create(ctx, &entity.StockItem{ID: id, Kind: entity.KindRoastedBean, Variety: entity.VarietyArabica, Location: "bodega"}); err != nil {
				return err
			}
			if _, err := ledger.Append(ctx, tx, id, dec("100"), entity.PurchaseReceipt("po-1", i), ledger.AppendOptions{}); err != nil {
				return err
			}
		}
		return nil
	}))
	return store
}

func view(t *testing.T, store repository.Store, fn func(ctx context.Context, e *valuation.Engine) error) error {
	t.Helper()
	ctx := context.Background()
	return store.View(ctx, func(tx repository.Tx) error { return fn(ctx, valuation.NewEngine(tx)) })
}

func TestGrossMargin_VentaRegistrada(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()
	sale := &entity.Sale{
		ID: "s-1", Customer: "Café El Parque", SaleDate: time.Now(), PaymentStatus: entity.PaymentPaid,
		Lines: []entity.SaleLine{{StockItemID: "a", Quantity: dec("10"), PricePerKg: dec("90000")}},
	}
	require.NoError(t, store.Run(ctx, func(tx repository.Tx) error {
		if _, err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}
		_, err := ledger.Append(ctx, tx, "a", dec("-10"), entity.SaleConsumption("s-1"), ledger.AppendOptions{})
		return err
	}))

	require.NoError(t, view(t, store, func(ctx context.Context, e *valuation.Engine) error {
		margin, err := e.GrossMargin(ctx, sale)
		require.NoError(t, err)
		assert.True(t, margin.Equal(dec("300000")), "margen %s", margin)

		cogs, err := e.CostOfGoodsSold(ctx, []*entity.Sale{sale})
		require.NoError(t, err)
		assert.True(t, cogs.Equal(dec("600000")), "cogs %s", cogs)
		return nil
	}))
}

func TestCostOfGoodsSold_VentaSinSalidaEnLedger(t *testing.T) {
	store := fixture(t)
	sale := &entity.Sale{
		ID: "fantasma", Customer: "x", SaleDate: time.Now(), PaymentStatus: entity.PaymentUnpaid,
		Lines: []entity.SaleLine{{StockItemID: "a", Quantity: dec("1"), PricePerKg: dec("1")}},
	}
	err := view(t, store, func(ctx context.Context, e *valuation.Engine) error {
		_, err := e.CostOfGoodsSold(ctx, []*entity.Sale{sale})
		return err
	})
	var broken *domain.BrokenLineageError
	require.True(t, errors.As(err, &broken))
	assert.Equal(t, "a", broken.StockItemID)
	assert.ErrorIs(t, err, domain.ErrBrokenLineage)
}

func TestBlendCost_PromedioPorPorcentaje(t *testing.T) {
	store := fixture(t)
	require.NoError(t, view(t, store, func(ctx context.Context, e *valuation.Engine) error {
		cost, err := e.BlendCost(ctx, []entity.BlendComponent{
			{StockItemID: "a", Percentage: dec("50")},
			{StockItemID: "r", Percentage: dec("50")},
		})
		require.NoError(t, err)
		assert.True(t, cost.Equal(dec("50000")), "costo %s", cost)

		cost, err = e.BlendCost(ctx, []entity.BlendComponent{
			{StockItemID: "a", Percentage: dec("70")},
			{StockItemID: "r", Percentage: dec("30")},
		})
		require.NoError(t, err)
		assert.True(t, cost.Equal(dec("54000")), "costo %s", cost)
		return nil
	}))
}

func TestUnitEconomics(t *testing.T) {
	store := fixture(t)
	require.NoError(t, view(t, store, func(ctx context.Context, e *valuation.Engine) error {
		ue, err := e.UnitEconomics(ctx, "a", dec("0.25"), dec("5000"), dec("2000"))
		require.NoError(t, err)
		// 60.000·0,25 + 5.000 + 2.000·0,25
		assert.True(t, ue.CostPerPackage.Equal(dec("20500")), "paquete %s", ue.CostPerPackage)
		assert.True(t, ue.CostPerKg.Equal(dec("82000")), "kg %s", ue.CostPerKg)

		_, err = e.UnitEconomics(ctx, "a", decimal.Zero, dec("5000"), decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = e.UnitEconomics(ctx, "a", dec("1"), dec("-1"), decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		return nil
	}))
}

func TestAuditBlend_DetectaCostoAlterado(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()
	require.NoError(t, store.Run(ctx, func(tx repository.Tx) error {
		if _, err := tx.Stock().Create(ctx, &entity.StockItem{ID: "m", Kind: entity.KindRoastedBean, Variety: entity.VarietyBlend, Location: "bodega"}); err != nil {
			return err
		}
		_, err := tx.Blends().Create(ctx, &entity.BlendEvent{
			ID: "b-1", Name: "Casa", BlendDate: time.Now(), OutputStockItemID: "m", OutputWeight: dec("10"),
			RecordedCostPerKg: dec("51000"),
			Components: []entity.BlendComponent{
				{StockItemID: "a", Percentage: dec("50")},
				{StockItemID: "r", Percentage: dec("50")},
			},
		})
		if err != nil {
			return err
		}
		for _, id := range []string{"a", "r"} {
			if _, err := ledger.Append(ctx, tx, id, dec("-5"), entity.BlendConsumption("b-1"), ledger.AppendOptions{}); err != nil {
				return err
			}
		}
		_, err = ledger.Append(ctx, tx, "m", dec("10"), entity.BlendOutput("b-1"), ledger.AppendOptions{})
		return err
	}))

	require.NoError(t, view(t, store, func(ctx context.Context, e *valuation.Engine) error {
		audit, err := e.AuditBlend(ctx, "b-1")
		require.NoError(t, err)
		assert.True(t, audit.Recomputed.Equal(dec("50000")), "recalculado %s", audit.Recomputed)
		assert.False(t, audit.Match)

		_, err = e.AuditBlend(ctx, "no-existe")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	}))
}
