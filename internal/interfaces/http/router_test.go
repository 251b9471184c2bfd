package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/cafetal-api/internal/application/analytics"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/application/ports"
	"github.com/jhoicas/cafetal-api/internal/application/usecase"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/embedded"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/metrics"
	"github.com/jhoicas/cafetal-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/cafetal-api/internal/interfaces/http"
	"github.com/jhoicas/cafetal-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testOptions struct {
	llm     ports.LLMService
	metrics *metrics.Prometheus
}

// buildTestApp arma la API completa sobre un store en memoria.
func buildTestApp(t *testing.T, opts testOptions) *fiber.App {
	t.Helper()
	store := embedded.NewMemoryStore()
	log := logger.Nop()

	var m inventory.Metrics
	deps := apphttp.RouterDeps{ServiceName: "cafetal-test", Log: log}
	if opts.metrics != nil {
		m = opts.metrics
		deps.Metrics = opts.metrics
	}
	trace := inventory.NewTraceabilityUseCase(store, log, m)

	deps.Traceability = trace
	deps.Replenishment = inventory.NewReplenishmentUseCase(store)
	deps.Reports = pdf.NewMarotoPDFGenerator("Cafetal Test")
	deps.Stock = usecase.NewStockUseCase(store)
	deps.Suppliers = usecase.NewSupplierUseCase(store)
	deps.PurchaseOrders = usecase.NewPurchaseOrderUseCase(store, log)
	deps.Grades = usecase.NewGradeUseCase(store)
	deps.Cuppings = usecase.NewCuppingUseCase(store)
	deps.Packaging = usecase.NewPackagingUseCase(store)
	deps.AlertSettings = usecase.NewAlertSettingUseCase(store)
	deps.Expenses = usecase.NewExpenseUseCase(store)
	deps.Tasks = usecase.NewTaskUseCase(store)
	deps.Roasts = usecase.NewRoastQueries(store)
	deps.Blends = usecase.NewBlendQueries(store)
	deps.Sales = usecase.NewSaleQueries(store)
	deps.Dashboard = appanalytics.NewDashboardUseCase(store)
	deps.Insights = appanalytics.NewInsightsUseCase(store, opts.llm, log)

	app := apphttp.NewApp("cafetal-test")
	apphttp.Router(app, deps)
	return app
}

// do ejecuta la petición y devuelve status y body.
func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// greenStock crea proveedor y orden aprobada, y recibe 100 kg de arábica a 60.000/kg.
func greenStock(t *testing.T, app *fiber.App) (poID, stockID string) {
	t.Helper()
	status, raw := do(t, app, http.MethodPost, "/api/suppliers", map[string]any{
		"name": "Koperasi Gayo", "origin": "Aceh", "specialties": []string{"arabica"},
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	supplier := decode[entity.Supplier](t, raw)

	status, raw = do(t, app, http.MethodPost, "/api/purchase-orders", map[string]any{
		"supplier_id": supplier.ID,
		"line_items":  []map[string]any{{"variety": "arabica", "quantity_kg": "100", "unit_price": "60000"}},
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	po := decode[entity.PurchaseOrder](t, raw)
	assert.Equal(t, entity.POStatusPending, po.Status)

	status, raw = do(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/status", map[string]any{"status": "approved"})
	require.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = do(t, app, http.MethodPost, "/api/purchase-orders/"+po.ID+"/receipts", map[string]any{
		"line_item_index": 0, "quantity_kg": "100", "location": "gudang",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	receipt := decode[dto.ReceiptResponse](t, raw)
	assert.Equal(t, entity.POStatusCompleted, receipt.PurchaseOrder.Status)
	assert.True(t, receipt.StockItem.Quantity.Equal(d("100")))
	return po.ID, receipt.StockItem.ID
}

// roasted tuesta los 100 kg verdes en 80 kg con 4.000/kg de costo operativo: 80.000/kg.
func roasted(t *testing.T, app *fiber.App, greenID string) dto.TransformResponse {
	t.Helper()
	status, raw := do(t, app, http.MethodPost, "/api/roasts", map[string]any{
		"inputs":                  []map[string]any{{"stock_item_id": greenID, "weight_kg": "100"}},
		"output_quantity_kg":      "80",
		"operational_cost_per_kg": "4000",
		"location":                "tostado",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	return decode[dto.TransformResponse](t, raw)
}

type errorBody = dto.ErrorResponse

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	status, raw := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","service":"cafetal-test"}`, string(raw))
}

func TestFlujo_CompraTostionVentaCOGS(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	poID, greenID := greenStock(t, app)
	roast := roasted(t, app, greenID)
	assert.True(t, roast.CostPerKg.Equal(d("80000")), roast.CostPerKg.String())
	require.Len(t, roast.Entries, 2)

	status, raw := do(t, app, http.MethodGet, "/api/stock/"+roast.Output.ID+"/cost-basis", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	basis := decode[dto.CostBasisResponse](t, raw)
	assert.True(t, basis.CostPerKg.Equal(d("80000")))
	assert.True(t, basis.Value.Equal(d("6400000")))

	status, raw = do(t, app, http.MethodPost, "/api/sales", map[string]any{
		"customer":       "Kopi Kenangan",
		"payment_status": "paid",
		"lines":          []map[string]any{{"stock_item_id": roast.Output.ID, "quantity_kg": "10", "price_per_kg": "150000"}},
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	sale := decode[dto.SaleResponse](t, raw)

	status, raw = do(t, app, http.MethodGet, "/api/sales/"+sale.Sale.ID+"/valuation", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = do(t, app, http.MethodGet, "/api/analytics/cogs", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	cogs := decode[dto.COGSResponse](t, raw)
	assert.Equal(t, 1, cogs.SalesCount)
	assert.True(t, cogs.Revenue.Equal(d("1500000")))
	assert.True(t, cogs.COGS.Equal(d("800000")))
	assert.True(t, cogs.GrossMargin.Equal(d("700000")))
	assert.True(t, cogs.MarginPct.Equal(d("46.67")), cogs.MarginPct.String())

	// la recepción dejó una sola entrada de ledger referida a la orden
	status, raw = do(t, app, http.MethodGet, "/api/ledger?origin_type=purchase_receipt&ref_id="+poID, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	entries := decode[[]entity.LedgerEntry](t, raw)
	require.Len(t, entries, 1)
	assert.Equal(t, greenID, entries[0].StockItemID)

	status, raw = do(t, app, http.MethodGet, "/api/stock/verify", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(raw), `"consistent":false`)

	status, raw = do(t, app, http.MethodGet, "/api/roasts/"+roast.EventID+"/audit", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Contains(t, string(raw), `"match":true`)
}

func TestDashboard_ResumenConFechaDeReferencia(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	_, greenID := greenStock(t, app)
	roast := roasted(t, app, greenID)
	status, raw := do(t, app, http.MethodPost, "/api/sales", map[string]any{
		"customer":       "Kopi Kenangan",
		"payment_status": "paid",
		"lines":          []map[string]any{{"stock_item_id": roast.Output.ID, "quantity_kg": "10", "price_per_kg": "150000"}},
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	today := time.Now().UTC().Format("2006-01-02")
	status, raw = do(t, app, http.MethodGet, "/api/dashboard/summary?as_of="+today, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	summary := decode[dto.FinancialSummaryDTO](t, raw)
	assert.True(t, summary.TodaySales.Equal(d("1500000")), summary.TodaySales.String())
	assert.True(t, summary.TodayCOGS.Equal(d("800000")), summary.TodayCOGS.String())
	assert.True(t, summary.InventoryValue.Equal(d("5600000")), summary.InventoryValue.String())

	status, raw = do(t, app, http.MethodGet, "/api/dashboard/summary?as_of=2001-01-15", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.True(t, decode[dto.FinancialSummaryDTO](t, raw).MonthlySales.IsZero())

	status, raw = do(t, app, http.MethodGet, "/api/dashboard/summary?as_of=15-01-2001", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "as_of", decode[errorBody](t, raw).Field)
}

func TestCrearVenta_ValidacionDevuelve400(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	status, raw := do(t, app, http.MethodPost, "/api/sales", map[string]any{
		"lines": []map[string]any{{"stock_item_id": "x", "quantity_kg": "1", "price_per_kg": "1"}},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	body := decode[errorBody](t, raw)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "customer")
	assert.Equal(t, "customer", body.Field)
}

func TestCuerpoInvalido_Devuelve400(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/stock", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecursoInexistente_Devuelve404(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	for _, path := range []string{"/api/stock/nope", "/api/stock/nope/cost-basis", "/api/sales/nope", "/api/no-existe"} {
		status, raw := do(t, app, http.MethodGet, path, nil)
		assert.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", decode[errorBody](t, raw).Code, path)
	}
}

func TestVenta_StockInsuficienteDevuelve409(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	_, greenID := greenStock(t, app)
	roast := roasted(t, app, greenID)

	status, raw := do(t, app, http.MethodPost, "/api/sales", map[string]any{
		"customer": "Toko Kopi",
		"lines":    []map[string]any{{"stock_item_id": roast.Output.ID, "quantity_kg": "81", "price_per_kg": "150000"}},
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[errorBody](t, raw).Code)

	status, raw = do(t, app, http.MethodGet, "/api/stock/"+roast.Output.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[entity.StockItem](t, raw).Quantity.Equal(d("80")))
}

func TestCostBasis_TrazabilidadRotaDevuelve422(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	status, raw := do(t, app, http.MethodPost, "/api/stock", map[string]any{
		"kind": "roasted_bean", "variety": "robusta", "location": "tostado", "opening_quantity_kg": "5",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	item := decode[entity.StockItem](t, raw)

	status, raw = do(t, app, http.MethodGet, "/api/stock/"+item.ID+"/cost-basis", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "BROKEN_LINEAGE", decode[errorBody](t, raw).Code)
}

func TestInsights_SinProveedorDevuelve503(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	status, raw := do(t, app, http.MethodPost, "/api/analytics/insights", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "AI_UNAVAILABLE", decode[errorBody](t, raw).Code)
}

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) GenerateInsights(context.Context, string, string) (string, error) { return s.reply, s.err }

func TestInsights_ConProveedor(t *testing.T) {
	app := buildTestApp(t, testOptions{llm: stubLLM{reply: "## Salud del inventario\nOK"}})
	status, raw := do(t, app, http.MethodPost, "/api/analytics/insights", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, "## Salud del inventario\nOK", decode[dto.BusinessInsightsDTO](t, raw).Insights)

	app = buildTestApp(t, testOptions{llm: stubLLM{err: errors.New("HTTP 529")}})
	status, _ = do(t, app, http.MethodPost, "/api/analytics/insights", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestAlertasDeStockBajo(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	_, greenID := greenStock(t, app)
	roasted(t, app, greenID)

	for _, body := range []map[string]any{
		{"variety": "arabica", "kind": "roasted_bean", "threshold_kg": "100"},
		{"variety": "robusta", "kind": "green_bean", "threshold_kg": "10"},
	} {
		status, raw := do(t, app, http.MethodPost, "/api/alert-settings", body)
		require.Equal(t, fiber.StatusCreated, status, string(raw))
	}

	status, raw := do(t, app, http.MethodGet, "/api/analytics/low-stock", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	alerts := decode[[]dto.LowStockAlertDTO](t, raw)
	require.Len(t, alerts, 2)

	// sin stock: déficit total, va primero y no tiene costo estimable
	assert.Equal(t, "robusta", alerts[0].Variety)
	assert.True(t, alerts[0].SuggestedKg.Equal(d("15")))
	assert.Nil(t, alerts[0].EstimatedCost)

	assert.Equal(t, "arabica", alerts[1].Variety)
	assert.True(t, alerts[1].CurrentKg.Equal(d("80")))
	assert.True(t, alerts[1].SuggestedKg.Equal(d("70")))
	require.NotNil(t, alerts[1].EstimatedCost)
	assert.True(t, alerts[1].EstimatedCost.Equal(d("5600000")), "estimado %s", alerts[1].EstimatedCost)
}

func TestListado_PaginacionYFiltros(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	for _, v := range []string{"arabica", "robusta", "arabica"} {
		status, raw := do(t, app, http.MethodPost, "/api/stock", map[string]any{"kind": "green_bean", "variety": v})
		require.Equal(t, fiber.StatusCreated, status, string(raw))
	}

	status, raw := do(t, app, http.MethodGet, "/api/stock?variety=arabica&limit=500", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	list := decode[dto.ListResponse[entity.StockItem]](t, raw)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 100, list.Page.Limit)
	assert.Equal(t, 2, list.Page.Count)

	status, raw = do(t, app, http.MethodGet, "/api/stock?kind=tostado", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decode[errorBody](t, raw).Message, "kind")

	status, _ = do(t, app, http.MethodGet, "/api/sales?from=2026-03-10&to=2026-03-01", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTareas_CrearCambiarEstadoYListar(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	status, raw := do(t, app, http.MethodPost, "/api/tasks", map[string]any{"text": "Catar lote T-001", "priority": "high"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	task := decode[entity.Todo](t, raw)
	assert.Equal(t, entity.TaskTodo, task.Status)

	status, raw = do(t, app, http.MethodPost, "/api/tasks", map[string]any{"text": "Limpiar tostadora", "priority": "urgente"})
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "priority", decode[errorBody](t, raw).Field)

	status, raw = do(t, app, http.MethodPost, "/api/tasks/"+task.ID+"/status", map[string]any{"status": "done"})
	require.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = do(t, app, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Empty(t, decode[dto.ListResponse[entity.Todo]](t, raw).Items)

	status, raw = do(t, app, http.MethodGet, "/api/tasks?status=done", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	list := decode[dto.ListResponse[entity.Todo]](t, raw)
	require.Len(t, list.Items, 1)
	assert.Equal(t, task.ID, list.Items[0].ID)
}

func TestReporteHPP_PDF(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	_, greenID := greenStock(t, app)
	roast := roasted(t, app, greenID)
	status, raw := do(t, app, http.MethodPost, "/api/packaging", map[string]any{"name": "Bolsa 250 g", "size_kg": "0.25", "cost": "3500"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/hpp/"+roast.Output.ID+"?other_cost_per_kg=2000", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestMetricas_ExponeContadoresHTTP(t *testing.T) {
	app := buildTestApp(t, testOptions{metrics: metrics.NewPrometheus()})
	status, _ := do(t, app, http.MethodGet, "/api/stock", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw := do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `cafetal_http_requests_total{method="GET",route="/api/stock`)
	assert.Contains(t, string(raw), `status="200"} 1`)
}

func TestRequestID_SeRespeta(t *testing.T) {
	app := buildTestApp(t, testOptions{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
