package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

var march15 = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type seeded struct {
	ctx     context.Context
	store   *embedded.MemoryStore
	uc      *inventory.TraceabilityUseCase
	arabica string
	robusta string
}

// seed deja 100 kg de arábica tostada a 250.000/kg y 5 kg de robusta sin costo.
func seed(t *testing.T) *seeded {
	t.Helper()
	s := &seeded{ctx: context.Background(), store: embedded.NewMemoryStore()}
	s.uc = inventory.NewTraceabilityUseCase(s.store, logger.Nop(), nil)

	item, err := s.uc.CreateStockItem(s.ctx, inventory.CreateStockItemInput{
		Kind: entity.KindRoastedBean, Variety: entity.VarietyArabica, Location: "tostado",
		OpeningQuantity: d("100"), OpeningCost: ptr(d("250000")),
	})
	require.NoError(t, err)
	s.arabica = item.ID

	item, err = s.uc.CreateStockItem(s.ctx, inventory.CreateStockItemInput{
		Kind: entity.KindRoastedBean, Variety: entity.VarietyRobusta, Location: "tostado",
		OpeningQuantity: d("5"),
	})
	require.NoError(t, err)
	s.robusta = item.ID
	return s
}

func (s *seeded) sale(t *testing.T, at time.Time, stockID, qty, price string) {
	t.Helper()
	_, err := s.uc.RecordSale(s.ctx, inventory.RecordSaleInput{
		Customer: "Kopi Kenangan", SaleDate: at, PaymentStatus: entity.PaymentPaid,
		Lines: []entity.SaleLine{{StockItemID: stockID, Quantity: d(qty), PricePerKg: d(price)}},
	})
	require.NoError(t, err)
}

func (s *seeded) expense(t *testing.T, at time.Time, category entity.ExpenseCategory, amount string) {
	t.Helper()
	require.NoError(t, s.store.Run(s.ctx, func(tx repository.Tx) error {
		_, err := tx.Expenses().Create(s.ctx, &entity.Expense{
			ExpenseDate: at, Description: "gasto " + string(category), Category: category, Amount: d(amount),
		})
		return err
	}))
}

// ── Dashboard ───────────────────────────────────────────────────────────────

func TestFinancialSummary(t *testing.T) {
	s := seed(t)
	s.sale(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), s.arabica, "10", "500000")
	s.sale(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), s.arabica, "20", "450000")
	s.expense(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), entity.ExpenseRent, "1000000")
	s.expense(t, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), entity.ExpenseSalary, "3000000")

	uc := NewDashboardUseCase(s.store)
	uc.now = func() time.Time { return march15 }

	out, err := uc.FinancialSummary(s.ctx)
	require.NoError(t, err)

	assert.True(t, out.TodaySales.Equal(d("5000000")), out.TodaySales.String())
	assert.True(t, out.TodayCOGS.Equal(d("2500000")))
	assert.True(t, out.MonthlySales.Equal(d("14000000")))
	assert.True(t, out.MonthlyCOGS.Equal(d("7500000")))
	assert.True(t, out.MonthlyGrossProfit.Equal(d("6500000")))
	assert.True(t, out.MonthlyExpenses.Equal(d("1000000")))
	assert.True(t, out.NetProfit.Equal(d("5500000")))
	assert.True(t, out.ExpensesByCategory["rent"].Equal(d("1000000")))
	assert.NotContains(t, out.ExpensesByCategory, "salary")

	assert.True(t, out.InventoryValue.Equal(d("17500000")), out.InventoryValue.String())
	assert.True(t, out.InventoryKg.Equal(d("75")))
	assert.Equal(t, []string{s.robusta}, out.UnvaluedItems)

	require.Len(t, out.TopVarieties, 1)
	assert.Equal(t, "arabica", out.TopVarieties[0].Variety)
	assert.True(t, out.TopVarieties[0].QuantitySold.Equal(d("30")))
	assert.True(t, out.TopVarieties[0].MarginPercentage.Equal(d("46.43")))
	assert.Equal(t, "Marzo 2026", out.DateLabel)
}

func TestFinancialSummary_VentaSinTrazabilidadFalla(t *testing.T) {
	s := seed(t)
	s.sale(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), s.robusta, "2", "300000")

	uc := NewDashboardUseCase(s.store)
	uc.now = func() time.Time { return march15 }

	_, err := uc.FinancialSummary(s.ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBrokenLineage))
}

func TestTopVarieties_OrdenYCorte(t *testing.T) {
	totals := map[entity.BeanVariety]*varietyTotals{
		entity.VarietyArabica:  {quantity: d("1"), revenue: d("100"), cogs: d("50")},
		entity.VarietyRobusta:  {quantity: d("1"), revenue: d("300"), cogs: d("100")},
		entity.VarietyLiberica: {quantity: d("1"), revenue: d("200"), cogs: d("200")},
	}
	out := topVarieties(totals, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "robusta", out[0].Variety)
	assert.Equal(t, "liberica", out[1].Variety)
	assert.True(t, out[1].MarginPercentage.IsZero())
}

// ── Insights ────────────────────────────────────────────────────────────────

type fakeLLM struct {
	system, context string
	reply           string
	err             error
}

func (f *fakeLLM) GenerateInsights(_ context.Context, systemPrompt, businessContext string) (string, error) {
	f.system, f.context = systemPrompt, businessContext
	return f.reply, f.err
}

func TestBusinessInsights_SinLLM(t *testing.T) {
	s := seed(t)
	_, err := NewInsightsUseCase(s.store, nil, logger.Nop()).BusinessInsights(s.ctx)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestBusinessInsights_ArmaContexto(t *testing.T) {
	s := seed(t)
	s.sale(t, march15, s.arabica, "10", "500000")
	require.NoError(t, s.store.Run(s.ctx, func(tx repository.Tx) error {
		_, err := tx.PurchaseOrders().Create(s.ctx, &entity.PurchaseOrder{
			SupplierID: "sup-1", OrderDate: march15, Status: entity.POStatusPending,
			LineItems: []entity.POLineItem{{Variety: entity.VarietyArabica, Quantity: d("60"), UnitPrice: d("200000")}},
		})
		return err
	}))

	llm := &fakeLLM{reply: "## Salud del inventario\nOK"}
	uc := NewInsightsUseCase(s.store, llm, logger.Nop())
	uc.now = func() time.Time { return march15 }

	out, err := uc.BusinessInsights(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, "## Salud del inventario\nOK", out.Insights)
	assert.Equal(t, march15, out.GeneratedAt)

	assert.Contains(t, llm.system, "Rupiah")
	assert.Contains(t, llm.context, "arabica tostado en tostado: 90 kg, Rp 250.000/kg")
	assert.Contains(t, llm.context, "robusta tostado en tostado: 5 kg, costo sin trazabilidad [STOCK BAJO]")
	assert.Contains(t, llm.context, "2026-03-15 Kopi Kenangan: 10 kg, Rp 5.000.000 (paid)")
	assert.Contains(t, llm.context, "(pending) proveedor sup-1: Rp 12.000.000; pendiente: arabica 60 kg")
}

func TestBusinessInsights_ErrorDelProveedor(t *testing.T) {
	s := seed(t)
	llm := &fakeLLM{err: errors.New("HTTP 529")}
	_, err := NewInsightsUseCase(s.store, llm, logger.Nop()).BusinessInsights(s.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "HTTP 529")
}

func TestBuildContext_AlertaConfigurada(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.store.Run(s.ctx, func(tx repository.Tx) error {
		_, err := tx.AlertSettings().Create(s.ctx, &entity.AlertSetting{
			Variety: entity.VarietyRobusta, Kind: entity.KindRoastedBean, ThresholdKg: d("10"),
		})
		return err
	}))

	text, err := NewInsightsUseCase(s.store, nil, nil).BuildContext(s.ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "## Alertas de stock configuradas")
	assert.Contains(t, text, "robusta roasted_bean: 5 kg (umbral 10 kg, sugerido 10 kg)")
	// con alerta configurada no se aplica el umbral fijo
	assert.NotContains(t, text, "[STOCK BAJO]")
}
