// Package metrics expone las métricas de la API y del motor de trazabilidad en formato Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cafetal"

var _ inventory.Metrics = (*Prometheus)(nil)

// Prometheus implementa inventory.Metrics y las métricas HTTP sobre un registry propio.
type Prometheus struct {
	registry        *prometheus.Registry
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	ledgerEntries   *prometheus.CounterVec
	lineageFailures *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus registra los colectores en un registry nuevo (más los de proceso y runtime de Go).
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Comandos y consultas de trazabilidad ejecutados, por resultado",
			},
			[]string{"command", "result"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Duración de comandos y consultas de trazabilidad",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		ledgerEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_entries_total",
				Help:      "Entradas de ledger confirmadas, por tipo de origen",
			},
			[]string{"origin"},
		),
		lineageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lineage_failures_total",
				Help:      "Resoluciones de costo fallidas (broken, cyclic)",
			},
			[]string{"kind"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Peticiones HTTP atendidas",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duración de las peticiones HTTP",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.commands, p.commandDuration, p.ledgerEntries, p.lineageFailures,
		p.httpRequests, p.httpDuration,
	)
	return p
}

// CommandObserved cuenta el comando con su resultado: ok, invalid, not_found, insufficient_stock, lineage o error.
func (p *Prometheus) CommandObserved(command string, elapsed time.Duration, err error) {
	p.commands.WithLabelValues(command, resultLabel(err)).Inc()
	p.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (p *Prometheus) LedgerAppended(origin entity.OriginType) {
	p.ledgerEntries.WithLabelValues(string(origin)).Inc()
}

func (p *Prometheus) LineageFailed(kind string) {
	p.lineageFailures.WithLabelValues(kind).Inc()
}

// HTTPObserved registra una petición ya atendida. route es la ruta registrada, no la URL.
func (p *Prometheus) HTTPObserved(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler devuelve el handler de exposición del registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry permite registrar colectores adicionales (p. ej. el pool de Postgres).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrBrokenLineage), errors.Is(err, domain.ErrCyclicLineage):
		return "lineage"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
