package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// TraceabilityUseCase agrupa los comandos que producen movimientos de inventario y las
// consultas de costo. Cada comando corre en una sola transacción del store: el evento,
// sus entradas de ledger y las cantidades materializadas se confirman juntos.
type TraceabilityUseCase struct {
	store   repository.Store
	log     *logger.Logger
	metrics Metrics
	now     func() time.Time
}

// NewTraceabilityUseCase construye el caso de uso. metrics puede ser nil.
func NewTraceabilityUseCase(store repository.Store, log *logger.Logger, metrics Metrics) *TraceabilityUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TraceabilityUseCase{
		store:   store,
		log:     log.Component("traceability"),
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// observe registra duración y resultado del comando; los errores de trazabilidad se cuentan aparte.
// Se usa con defer y un puntero al error con nombre del método.
func (uc *TraceabilityUseCase) observe(command string, start time.Time, errp *error) {
	err := *errp
	uc.metrics.CommandObserved(command, time.Since(start), err)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrBrokenLineage):
		uc.metrics.LineageFailed("broken")
		uc.log.Warn().Err(err).Str("command", command).Msg("trazabilidad rota")
	case errors.Is(err, domain.ErrCyclicLineage):
		uc.metrics.LineageFailed("cyclic")
		uc.log.Error().Err(err).Str("command", command).Msg("trazabilidad cíclica")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInsufficientStock):
		uc.log.Debug().Err(err).Str("command", command).Msg("comando rechazado")
	default:
		uc.log.Error().Err(err).Str("command", command).Msg("comando falló")
	}
}

// appended cuenta las entradas confirmadas por origen.
func (uc *TraceabilityUseCase) appended(entries []*entity.LedgerEntry) {
	for _, e := range entries {
		uc.metrics.LedgerAppended(e.Origin.Type)
	}
}

// append es ledger.Append con la fecha del caso de uso.
func (uc *TraceabilityUseCase) append(ctx context.Context, tx repository.Tx, stockItemID string, delta decimal.Decimal, origin entity.Origin, at time.Time) (*entity.LedgerEntry, error) {
	return ledger.Append(ctx, tx, stockItemID, delta, origin, ledger.AppendOptions{OccurredAt: at})
}

// outputItem devuelve el ítem de salida indicado o crea uno nuevo del tipo y variedad dados.
func (uc *TraceabilityUseCase) outputItem(ctx context.Context, tx repository.Tx, id string, kind entity.StockKind, variety entity.BeanVariety, location string, at time.Time) (*entity.StockItem, error) {
	if id != "" {
		item, err := tx.Stock().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if item.Kind != kind {
			return nil, domain.NewValidationError("output_stock_item_id", "el ítem %s es %s, se esperaba %s", id, item.Kind, kind)
		}
		if item.Variety != variety {
			return nil, domain.NewValidationError("output_stock_item_id", "el ítem %s es %s, se esperaba %s", id, item.Variety, variety)
		}
		return item, nil
	}
	item := &entity.StockItem{
		Kind:        kind,
		Variety:     variety,
		Location:    location,
		LastUpdated: at,
		CreatedAt:   at,
	}
	if _, err := tx.Stock().Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// orNow devuelve t o la hora actual si t es cero.
func (uc *TraceabilityUseCase) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return uc.now()
	}
	return t.UTC()
}
