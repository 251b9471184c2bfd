package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_CuentaPorResultado(t *testing.T) {
	p := NewPrometheus()
	p.CommandObserved("record_sale", time.Millisecond, nil)
	p.CommandObserved("record_sale", time.Millisecond, &domain.InsufficientStockError{StockItemID: "x"})
	p.CommandObserved("get_cost_basis", time.Millisecond, &domain.BrokenLineageError{StockItemID: "x"})
	p.LedgerAppended(entity.OriginSaleConsumption)
	p.LedgerAppended(entity.OriginSaleConsumption)
	p.LineageFailed("broken")

	assert.Equal(t, 1.0, testutil.ToFloat64(p.commands.WithLabelValues("record_sale", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.commands.WithLabelValues("record_sale", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.commands.WithLabelValues("get_cost_basis", "lineage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.ledgerEntries.WithLabelValues("sale_consumption")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lineageFailures.WithLabelValues("broken")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.HTTPObserved("GET", "/api/stock/:id/cost-basis", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cafetal_http_requests_total{method="GET",route="/api/stock/:id/cost-basis",status="200"} 1`)
}
