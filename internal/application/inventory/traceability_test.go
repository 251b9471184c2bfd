package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

type recordingMetrics struct {
	mu       sync.Mutex
	appended map[entity.OriginType]int
	lineage  map[string]int
	commands map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		appended: map[entity.OriginType]int{},
		lineage:  map[string]int{},
		commands: map[string]int{},
	}
}

func (m *recordingMetrics) CommandObserved(cmd string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[cmd]++
}

func (m *recordingMetrics) LedgerAppended(o entity.OriginType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended[o]++
}

func (m *recordingMetrics) LineageFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineage[kind]++
}

type fixture struct {
	ctx     context.Context
	store   *embedded.MemoryStore
	uc      *inventory.TraceabilityUseCase
	metrics *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := embedded.NewMemoryStore()
	m := newRecordingMetrics()
	return &fixture{
		ctx:     context.Background(),
		store:   store,
		uc:      inventory.NewTraceabilityUseCase(store, logger.Nop(), m),
		metrics: m,
	}
}

// approvedPO crea un proveedor y una orden aprobada con las líneas dadas.
func (f *fixture) approvedPO(t *testing.T, lines ...entity.POLineItem) string {
	t.Helper()
	var poID string
	err := f.store.Run(f.ctx, func(tx repository.Tx) error {
		supplierID, err := tx.Suppliers().Create(f.ctx, &entity.Supplier{Name: "Finca La Esperanza", CreatedAt: time.Now()})
		if err != nil {
			return err
		}
		poID, err = tx.PurchaseOrders().Create(f.ctx, &entity.PurchaseOrder{
			SupplierID: supplierID,
			OrderDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			LineItems:  lines,
			Status:     entity.POStatusApproved,
		})
		return err
	})
	require.NoError(t, err)
	return poID
}

func arabica(qty, price string) entity.POLineItem {
	return entity.POLineItem{Variety: entity.VarietyArabica, Quantity: d(qty), UnitPrice: d(price)}
}

// roastedLot crea un lote tostado con saldo inicial a un costo conocido.
func (f *fixture) roastedLot(t *testing.T, variety entity.BeanVariety, qty, cost string) string {
	t.Helper()
	item, err := f.uc.CreateStockItem(f.ctx, inventory.CreateStockItemInput{
		Kind:            entity.KindRoastedBean,
		Variety:         variety,
		Location:        "bodega-tostado",
		OpeningQuantity: d(qty),
		OpeningCost:     ptr(d(cost)),
	})
	require.NoError(t, err)
	return item.ID
}

func (f *fixture) assertLedgerBalanced(t *testing.T) {
	t.Helper()
	checks, err := f.uc.VerifyStock(f.ctx, "")
	require.NoError(t, err)
	for _, c := range checks {
		assert.Truef(t, c.Consistent, "ítem %s: cantidad %s, ledger %s", c.StockItemID, c.Quantity, c.LedgerSum)
		assert.False(t, c.Quantity.IsNegative())
	}
}

// ── Escenarios ──────────────────────────────────────────────────────────────

func TestEscenario_CompraTostionVenta(t *testing.T) {
	f := newFixture(t)
	poID := f.approvedPO(t, arabica("100", "200000"))

	rec, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: poID, LineItemIndex: 0, Quantity: d("100"), Location: "bodega-verde",
	})
	require.NoError(t, err)
	assert.True(t, rec.StockItem.Quantity.Equal(d("100")))
	assert.Equal(t, entity.POStatusCompleted, rec.PurchaseOrder.Status)

	roast, err := f.uc.RecordRoast(f.ctx, inventory.RecordRoastInput{
		Inputs:               []entity.RoastInput{{StockItemID: rec.StockItem.ID, Weight: d("100")}},
		OutputQuantity:       d("85"),
		OperationalCostPerKg: d("15000"),
		Location:             "bodega-tostado",
	})
	require.NoError(t, err)
	assert.Equal(t, "252941.18", roast.CostPerKg.StringFixed(2))
	assert.Equal(t, entity.VarietyArabica, roast.Output.Variety)

	basis, err := f.uc.GetCostBasis(f.ctx, roast.Output.ID)
	require.NoError(t, err)
	assert.Equal(t, "252941.18", basis.CostPerKg.StringFixed(2))
	assert.True(t, basis.Quantity.Equal(d("85")))

	sale, err := f.uc.RecordSale(f.ctx, inventory.RecordSaleInput{
		Customer: "Kopi Kenangan",
		Lines:    []entity.SaleLine{{StockItemID: roast.Output.ID, Quantity: d("10"), PricePerKg: d("450000")}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sale.Sale.InvoiceNumber)
	assert.Equal(t, entity.PaymentUnpaid, sale.Sale.PaymentStatus)

	v, err := f.uc.GetSaleValuation(f.ctx, sale.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "2529412", v.COGS.StringFixed(0))
	assert.Equal(t, "1970588", v.GrossMargin.StringFixed(0))
	assert.True(t, v.Revenue.Equal(d("4500000")))

	rep, err := f.uc.GetCOGS(f.ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.SalesCount)
	assert.True(t, rep.COGS.Equal(v.COGS))

	f.assertLedgerBalanced(t)
	assert.Equal(t, 1, f.metrics.appended[entity.OriginPurchaseReceipt])
	assert.Equal(t, 1, f.metrics.appended[entity.OriginRoastConsumption])
	assert.Equal(t, 1, f.metrics.appended[entity.OriginRoastOutput])
	assert.Equal(t, 1, f.metrics.appended[entity.OriginSaleConsumption])
}

func TestGetCostBasis_TrazabilidadRotaNoDevuelveCero(t *testing.T) {
	f := newFixture(t)
	item, err := f.uc.CreateStockItem(f.ctx, inventory.CreateStockItemInput{
		Kind: entity.KindRoastedBean, Variety: entity.VarietyRobusta, Location: "bodega-tostado",
	})
	require.NoError(t, err)

	err = f.store.Run(f.ctx, func(tx repository.Tx) error {
		_, err := ledger.Append(f.ctx, tx, item.ID, d("20"), entity.RoastOutput("tostion-inexistente"), ledger.AppendOptions{})
		return err
	})
	require.NoError(t, err)

	_, err = f.uc.GetCostBasis(f.ctx, item.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBrokenLineage)
	var broken *domain.BrokenLineageError
	require.True(t, errors.As(err, &broken))
	assert.Equal(t, item.ID, broken.StockItemID)
	assert.Contains(t, broken.Origin, "tostion-inexistente")
	assert.Equal(t, 1, f.metrics.lineage["broken"])

	// el HPP del ítem queda bloqueado por la misma causa
	_, err = f.uc.GetUnitEconomics(f.ctx, inventory.UnitEconomicsInput{
		StockItemID: item.ID, PackagingSizeKg: d("1"), PackagingCost: d("5000"),
	})
	assert.ErrorIs(t, err, domain.ErrBrokenLineage)
}

func TestRecordBlend_CincuentaCincuenta(t *testing.T) {
	f := newFixture(t)
	a := f.roastedLot(t, entity.VarietyArabica, "40", "250000")
	b := f.roastedLot(t, entity.VarietyRobusta, "40", "300000")

	res, err := f.uc.RecordBlend(f.ctx, inventory.RecordBlendInput{
		Name: "Casa",
		Components: []entity.BlendComponent{
			{StockItemID: a, Percentage: d("50")},
			{StockItemID: b, Percentage: d("50")},
		},
		OutputQuantity: d("20"),
		Location:       "bodega-tostado",
	})
	require.NoError(t, err)
	assert.True(t, res.CostPerKg.Equal(d("275000")), "costo %s", res.CostPerKg)
	assert.Equal(t, entity.VarietyBlend, res.Output.Variety)

	basis, err := f.uc.GetCostBasis(f.ctx, res.Output.ID)
	require.NoError(t, err)
	assert.True(t, basis.CostPerKg.Equal(d("275000")))

	ca, err := f.uc.GetCostBasis(f.ctx, a)
	require.NoError(t, err)
	assert.True(t, ca.Quantity.Equal(d("30")))

	audit, err := f.uc.AuditBlend(f.ctx, res.EventID)
	require.NoError(t, err)
	assert.True(t, audit.Match)
	f.assertLedgerBalanced(t)
}

func TestRecordBlend_CombinacionConvexa(t *testing.T) {
	f := newFixture(t)
	a := f.roastedLot(t, entity.VarietyArabica, "50", "210000")
	b := f.roastedLot(t, entity.VarietyLiberica, "50", "330000")
	c := f.roastedLot(t, entity.VarietyRobusta, "50", "180000")

	res, err := f.uc.RecordBlend(f.ctx, inventory.RecordBlendInput{
		Name: "Espresso",
		Components: []entity.BlendComponent{
			{StockItemID: a, Percentage: d("33.3")},
			{StockItemID: b, Percentage: d("16.7")},
			{StockItemID: c, Percentage: d("50")},
		},
		OutputQuantity: d("30"),
		Location:       "bodega-tostado",
	})
	require.NoError(t, err)
	assert.True(t, res.CostPerKg.GreaterThanOrEqual(d("180000")))
	assert.True(t, res.CostPerKg.LessThanOrEqual(d("330000")))
}

func TestRecordBlend_PorcentajesNoSuman100(t *testing.T) {
	f := newFixture(t)
	a := f.roastedLot(t, entity.VarietyArabica, "10", "250000")
	b := f.roastedLot(t, entity.VarietyRobusta, "10", "300000")

	_, err := f.uc.RecordBlend(f.ctx, inventory.RecordBlendInput{
		Name: "Mala",
		Components: []entity.BlendComponent{
			{StockItemID: a, Percentage: d("60")},
			{StockItemID: b, Percentage: d("50")},
		},
		OutputQuantity: d("5"),
		Location:       "bodega-tostado",
	})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "components.percentage", verr.Field)
}

func TestRecordBlend_ReinyectaEnItemDeSuPropioLinaje(t *testing.T) {
	f := newFixture(t)
	house := f.roastedLot(t, entity.VarietyBlend, "50", "250000")
	ara := f.roastedLot(t, entity.VarietyArabica, "50", "300000")

	x, err := f.uc.RecordBlend(f.ctx, inventory.RecordBlendInput{
		Name: "Base",
		Components: []entity.BlendComponent{
			{StockItemID: house, Percentage: d("50")},
			{StockItemID: ara, Percentage: d("50")},
		},
		OutputQuantity: d("20"),
		Location:       "bodega-tostado",
	})
	require.NoError(t, err)
	assert.True(t, x.CostPerKg.Equal(d("275000")), "costo %s", x.CostPerKg)

	// La segunda mezcla vuelve a la casa, que ya aportó a x.
	y, err := f.uc.RecordBlend(f.ctx, inventory.RecordBlendInput{
		Name: "Casa",
		Components: []entity.BlendComponent{
			{StockItemID: x.Output.ID, Percentage: d("50")},
			{StockItemID: ara, Percentage: d("50")},
		},
		OutputQuantity:    d("10"),
		OutputStockItemID: house,
		Location:          "bodega-tostado",
	})
	require.NoError(t, err)
	assert.True(t, y.CostPerKg.Equal(d("287500")), "costo %s", y.CostPerKg)

	// 40 kg a 250.000 más 10 kg a 287.500.
	basis, err := f.uc.GetCostBasis(f.ctx, house)
	require.NoError(t, err)
	assert.True(t, basis.Quantity.Equal(d("50")))
	assert.True(t, basis.CostPerKg.Equal(d("257500")), "costo %s", basis.CostPerKg)

	audit, err := f.uc.AuditBlend(f.ctx, y.EventID)
	require.NoError(t, err)
	assert.True(t, audit.Match, "registrado %s, recalculado %s", audit.Recorded, audit.Recomputed)

	_, err = f.uc.RecordSale(f.ctx, inventory.RecordSaleInput{
		InvoiceNumber: "FV-10",
		Customer:      "Café El Parque",
		Lines:         []entity.SaleLine{{StockItemID: house, Quantity: d("5"), PricePerKg: d("400000")}},
		PaymentStatus: entity.PaymentPaid,
	})
	require.NoError(t, err)
	rep, err := f.uc.GetCOGS(f.ctx, nil, nil)
	require.NoError(t, err)
	assert.True(t, rep.COGS.Equal(d("1287500")), "cogs %s", rep.COGS)
	f.assertLedgerBalanced(t)
}

func TestRecordRoast_ConservacionDeCosto(t *testing.T) {
	f := newFixture(t)
	poID := f.approvedPO(t, arabica("60", "185000"), entity.POLineItem{Variety: entity.VarietyRobusta, Quantity: d("40"), UnitPrice: d("95000")})
	g1, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: poID, LineItemIndex: 0, Quantity: d("60"), Location: "verde"})
	require.NoError(t, err)
	g2, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: poID, LineItemIndex: 1, Quantity: d("40"), Location: "verde"})
	require.NoError(t, err)

	roast, err := f.uc.RecordRoast(f.ctx, inventory.RecordRoastInput{
		Inputs: []entity.RoastInput{
			{StockItemID: g1.StockItem.ID, Weight: d("45")},
			{StockItemID: g2.StockItem.ID, Weight: d("30")},
		},
		OutputQuantity:       d("63.7"),
		OperationalCostPerKg: d("12500"),
		Mode:                 entity.RoastModeExternal,
		Roaster:              "Tostadora Andina",
		Location:             "tostado",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.VarietyBlend, roast.Output.Variety)

	in := d("45").Mul(d("185000")).Add(d("30").Mul(d("95000")))
	op := d("12500").Mul(d("75"))
	out := roast.CostPerKg.Mul(d("63.7"))
	assert.True(t, out.Sub(in.Add(op)).Abs().LessThan(d("0.0001")), "salida %s, entrada %s", out, in.Add(op))

	audit, err := f.uc.AuditRoast(f.ctx, roast.EventID)
	require.NoError(t, err)
	assert.True(t, audit.Match)
}

func TestRecordRoast_SalidaMayorQueEntrada(t *testing.T) {
	f := newFixture(t)
	poID := f.approvedPO(t, arabica("10", "200000"))
	g, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: poID, Quantity: d("10"), Location: "verde"})
	require.NoError(t, err)

	_, err = f.uc.RecordRoast(f.ctx, inventory.RecordRoastInput{
		Inputs:         []entity.RoastInput{{StockItemID: g.StockItem.ID, Weight: d("10")}},
		OutputQuantity: d("11"),
		Location:       "tostado",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	basis, err := f.uc.GetCostBasis(f.ctx, g.StockItem.ID)
	require.NoError(t, err)
	assert.True(t, basis.Quantity.Equal(d("10")), "la tostión rechazada no debe consumir stock")
}

func TestRecordSale_StockInsuficienteNoRegistraNada(t *testing.T) {
	f := newFixture(t)
	lot := f.roastedLot(t, entity.VarietyArabica, "5", "250000")
	other := f.roastedLot(t, entity.VarietyRobusta, "50", "150000")

	_, err := f.uc.RecordSale(f.ctx, inventory.RecordSaleInput{
		Customer: "Cafe Tujuh",
		Lines: []entity.SaleLine{
			{StockItemID: other, Quantity: d("10"), PricePerKg: d("300000")},
			{StockItemID: lot, Quantity: d("6"), PricePerKg: d("450000")},
		},
	})
	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, lot, insufficient.StockItemID)
	assert.True(t, insufficient.Available.Equal(d("5")))
	assert.True(t, insufficient.Requested.Equal(d("6")))

	basis, err := f.uc.GetCostBasis(f.ctx, other)
	require.NoError(t, err)
	assert.True(t, basis.Quantity.Equal(d("50")), "la primera línea no debe quedar aplicada")

	rep, err := f.uc.GetCOGS(f.ctx, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, rep.SalesCount)
	f.assertLedgerBalanced(t)
}

func TestReceivePurchase_RechazaExcesoYOrdenNoAprobada(t *testing.T) {
	f := newFixture(t)
	poID := f.approvedPO(t, arabica("100", "200000"))

	first, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: poID, Quantity: d("60"), Location: "verde"})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, first.PurchaseOrder.Status)

	_, err = f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: poID, Quantity: d("41"), StockItemID: first.StockItem.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	last, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: poID, Quantity: d("40"), StockItemID: first.StockItem.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCompleted, last.PurchaseOrder.Status)
	assert.True(t, last.StockItem.Quantity.Equal(d("100")))

	_, err = f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: poID, Quantity: d("1"), Location: "verde"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: "no-existe", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetCostBasis_Idempotente(t *testing.T) {
	f := newFixture(t)
	a := f.roastedLot(t, entity.VarietyArabica, "12", "251234.567")

	first, err := f.uc.GetCostBasis(f.ctx, a)
	require.NoError(t, err)
	second, err := f.uc.GetCostBasis(f.ctx, a)
	require.NoError(t, err)
	assert.True(t, first.CostPerKg.Equal(second.CostPerKg))
}

func TestCostoHistorico_TostionConservaCostoDeSuMomento(t *testing.T) {
	f := newFixture(t)
	po1 := f.approvedPO(t, arabica("100", "200000"))
	g, err := f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{PurchaseOrderID: po1, Quantity: d("100"), Location: "verde"})
	require.NoError(t, err)

	roast, err := f.uc.RecordRoast(f.ctx, inventory.RecordRoastInput{
		Inputs:         []entity.RoastInput{{StockItemID: g.StockItem.ID, Weight: d("50")}},
		OutputQuantity: d("42.5"),
		Location:       "tostado",
	})
	require.NoError(t, err)

	po2 := f.approvedPO(t, arabica("50", "300000"))
	_, err = f.uc.ReceivePurchase(f.ctx, inventory.ReceivePurchaseInput{
		PurchaseOrderID: po2, Quantity: d("50"), StockItemID: g.StockItem.ID,
	})
	require.NoError(t, err)

	green, err := f.uc.GetCostBasis(f.ctx, g.StockItem.ID)
	require.NoError(t, err)
	assert.True(t, green.CostPerKg.Equal(d("250000")), "promedio móvil %s", green.CostPerKg)

	audit, err := f.uc.AuditRoast(f.ctx, roast.EventID)
	require.NoError(t, err)
	assert.True(t, audit.Match, "registrado %s, recalculado %s", audit.Recorded, audit.Recomputed)

	node, err := f.uc.GetLineage(f.ctx, roast.Output.ID)
	require.NoError(t, err)
	require.Len(t, node.Sources, 1)
	require.Len(t, node.Sources[0].Inputs, 1)
	assert.True(t, node.Sources[0].Inputs[0].CostPerKg.Equal(d("200000")))
}

func TestAdjustStock_CorreccionYCostoOpcional(t *testing.T) {
	f := newFixture(t)
	lot := f.roastedLot(t, entity.VarietyArabica, "10", "240000")

	_, err := f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{StockItemID: lot, Delta: d("-12"), Reason: "conteo físico"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{StockItemID: lot, Delta: d("-1"), Reason: "merma", UnitCost: ptr(d("1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{StockItemID: lot, Delta: d("-1"), Reason: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// un ajuste positivo sin costo no cambia el costo base
	_, err = f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{StockItemID: lot, Delta: d("2"), Reason: "hallazgo en bodega"})
	require.NoError(t, err)
	basis, err := f.uc.GetCostBasis(f.ctx, lot)
	require.NoError(t, err)
	assert.True(t, basis.CostPerKg.Equal(d("240000")))
	assert.True(t, basis.Quantity.Equal(d("12")))

	e, err := f.uc.AdjustStock(f.ctx, inventory.AdjustStockInput{StockItemID: lot, Delta: d("-13"), Reason: "corrección de conteo", Correcting: true})
	require.NoError(t, err)
	assert.True(t, e.BalanceAfter.Equal(d("-1")))
	assert.True(t, e.Correcting)
}

func TestAdjustStock_SoloAjustesSinCostoRompeTrazabilidad(t *testing.T) {
	f := newFixture(t)
	item, err := f.uc.CreateStockItem(f.ctx, inventory.CreateStockItemInput{
		Kind: entity.KindGreenBean, Variety: entity.VarietyLiberica, Location: "verde", OpeningQuantity: d("5"),
	})
	require.NoError(t, err)

	_, err = f.uc.GetCostBasis(f.ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrBrokenLineage)
}

func TestGetUnitEconomics_ConEmpaqueDelCatalogo(t *testing.T) {
	f := newFixture(t)
	lot := f.roastedLot(t, entity.VarietyArabica, "10", "200000")
	var packID string
	err := f.store.Run(f.ctx, func(tx repository.Tx) error {
		var err error
		packID, err = tx.Packaging().Create(f.ctx, &entity.Packaging{Name: "Bolsa 250 g", SizeKg: d("0.25"), Cost: d("5000")})
		return err
	})
	require.NoError(t, err)

	ue, err := f.uc.GetUnitEconomics(f.ctx, inventory.UnitEconomicsInput{
		StockItemID: lot, PackagingID: packID, OtherCostPerKg: d("10000"),
	})
	require.NoError(t, err)
	assert.True(t, ue.CostPerPackage.Equal(d("57500")), "por paquete %s", ue.CostPerPackage)
	assert.True(t, ue.CostPerKg.Equal(d("230000")), "por kg %s", ue.CostPerKg)

	_, err = f.uc.GetUnitEconomics(f.ctx, inventory.UnitEconomicsInput{StockItemID: lot, PackagingSizeKg: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordSale_ConcurrenteNoDejaSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	lot := f.roastedLot(t, entity.VarietyArabica, "10", "250000")

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordSale(f.ctx, inventory.RecordSaleInput{
				Customer: "Mayorista",
				Lines:    []entity.SaleLine{{StockItemID: lot, Quantity: d("3"), PricePerKg: d("400000")}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 3, ok)
	f.assertLedgerBalanced(t)
}
