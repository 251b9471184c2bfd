package inventory

import (
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// Metrics es el puerto de observabilidad del motor de trazabilidad (implementado con Prometheus).
type Metrics interface {
	CommandObserved(command string, elapsed time.Duration, err error)
	LedgerAppended(origin entity.OriginType)
	LineageFailed(kind string)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) CommandObserved(string, time.Duration, error) {}
func (NopMetrics) LedgerAppended(entity.OriginType)            {}
func (NopMetrics) LineageFailed(string)                        {}
