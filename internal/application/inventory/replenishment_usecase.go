package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase compara el stock por variedad y tipo contra los umbrales configurados.
type ReplenishmentUseCase struct {
	store repository.Store
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(store repository.Store) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{store: store}
}

// LowStockAlert es una variedad/tipo cuyo stock total está en o bajo el umbral.
type LowStockAlert struct {
	Variety       entity.BeanVariety
	Kind          entity.StockKind
	ThresholdKg   decimal.Decimal
	CurrentKg     decimal.Decimal
	SuggestedKg   decimal.Decimal  // lleva el stock a 1.5 × umbral
	EstimatedCost *decimal.Decimal // nil si ningún ítem tiene costo resoluble
	StockItemIDs  []string
}

var reorderFactor = decimal.NewFromFloat(1.5)

// LowStockAlerts devuelve las alertas activas ordenadas por déficit relativo (más crítico primero).
// El costo estimado usa el costo base promedio de los ítems; si su trazabilidad está rota se omite
// la estimación pero la alerta se mantiene.
func (uc *ReplenishmentUseCase) LowStockAlerts(ctx context.Context) ([]LowStockAlert, error) {
	var alerts []LowStockAlert
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		settings, err := tx.AlertSettings().List(ctx, repository.Filter{})
		if err != nil {
			return err
		}
		resolver := lineage.NewResolver(tx)
		for _, s := range settings {
			items, err := tx.Stock().List(ctx, repository.Filter{Attrs: map[string]string{
				"variety": string(s.Variety),
				"kind":    string(s.Kind),
			}})
			if err != nil {
				return err
			}
			total := decimal.Zero
			value := decimal.Zero
			valued := decimal.Zero
			ids := make([]string, 0, len(items))
			for _, it := range items {
				total = total.Add(it.Quantity)
				ids = append(ids, it.ID)
				if !it.Quantity.IsPositive() {
					continue
				}
				cost, err := resolver.CostBasis(ctx, it.ID)
				if errors.Is(err, domain.ErrBrokenLineage) {
					continue
				}
				if err != nil {
					return err
				}
				value = value.Add(cost.Mul(it.Quantity))
				valued = valued.Add(it.Quantity)
			}
			if total.GreaterThan(s.ThresholdKg) {
				continue
			}
			suggested := decimal.Max(s.ThresholdKg.Mul(reorderFactor).Sub(total), decimal.Zero)
			alert := LowStockAlert{
				Variety:      s.Variety,
				Kind:         s.Kind,
				ThresholdKg:  s.ThresholdKg,
				CurrentKg:    total,
				SuggestedKg:  suggested,
				StockItemIDs: ids,
			}
			if valued.IsPositive() {
				est := value.Div(valued).Mul(suggested).Round(2)
				alert.EstimatedCost = &est
			}
			alerts = append(alerts, alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return deficit(alerts[i]).GreaterThan(deficit(alerts[j]))
	})
	return alerts, nil
}

// deficit es la fracción del umbral que falta (0 = justo en el umbral, 1 = sin stock).
func deficit(a LowStockAlert) decimal.Decimal {
	if !a.ThresholdKg.IsPositive() {
		return decimal.Zero
	}
	return a.ThresholdKg.Sub(a.CurrentKg).Div(a.ThresholdKg)
}
