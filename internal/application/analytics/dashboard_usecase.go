// Package analytics contiene los casos de uso para reportes de negocio: el resumen
// financiero del dashboard y el análisis asistido por IA.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const dashboardTopVarieties = 5 // número de variedades en el widget del dashboard

var hundred = decimal.NewFromInt(100)

// DashboardUseCase genera el resumen financiero del día y del mes en curso.
//
// Cada bloque del resumen lee su propia vista del store; las vistas son independientes
// y se ejecutan en paralelo.
type DashboardUseCase struct {
	store repository.Store
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(store repository.Store) *DashboardUseCase {
	return &DashboardUseCase{store: store, now: time.Now}
}

type salesTotals struct {
	revenue   decimal.Decimal
	cogs      decimal.Decimal
	varieties map[entity.BeanVariety]*varietyTotals
}

type varietyTotals struct {
	quantity decimal.Decimal
	revenue  decimal.Decimal
	cogs     decimal.Decimal
}

type stockTotals struct {
	value    decimal.Decimal
	kg       decimal.Decimal
	unvalued []string
}

// FinancialSummary construye el FinancialSummaryDTO.
//
// Cuatro lecturas en paralelo:
//  1. ventas de hoy  → TodaySales + TodayCOGS
//  2. ventas del mes → MonthlySales + MonthlyCOGS + TopVarieties
//  3. gastos del mes → MonthlyExpenses por categoría
//  4. stock          → InventoryValue
//
// Una venta con trazabilidad rota hace fallar el resumen: su COGS no se reporta como cero.
func (uc *DashboardUseCase) FinancialSummary(ctx context.Context) (*dto.FinancialSummaryDTO, error) {
	return uc.FinancialSummaryAt(ctx, uc.now())
}

// FinancialSummaryAt arma el resumen tomando now como "hoy". El valor del inventario es
// siempre el actual.
func (uc *DashboardUseCase) FinancialSummaryAt(ctx context.Context, now time.Time) (*dto.FinancialSummaryDTO, error) {

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		today, month salesTotals
		expenses     map[string]decimal.Decimal
		stock        stockTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if today, err = uc.salesBetween(gctx, todayStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: ventas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if month, err = uc.salesBetween(gctx, monthStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: ventas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if expenses, err = uc.expensesBetween(gctx, monthStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: gastos del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if stock, err = uc.stockValue(gctx); err != nil {
			return fmt.Errorf("dashboard: valor del inventario: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalExpenses := decimal.Zero
	for _, v := range expenses {
		totalExpenses = totalExpenses.Add(v)
	}
	monthGross := month.revenue.Sub(month.cogs)

	return &dto.FinancialSummaryDTO{
		TodaySales:         today.revenue.Round(2),
		TodayCOGS:          today.cogs.Round(2),
		TodayGrossProfit:   today.revenue.Sub(today.cogs).Round(2),
		MonthlySales:       month.revenue.Round(2),
		MonthlyCOGS:        month.cogs.Round(2),
		MonthlyGrossProfit: monthGross.Round(2),
		MonthlyExpenses:    totalExpenses.Round(2),
		ExpensesByCategory: expenses,
		NetProfit:          monthGross.Sub(totalExpenses).Round(2),
		InventoryValue:     stock.value.Round(2),
		InventoryKg:        stock.kg,
		UnvaluedItems:      stock.unvalued,
		TopVarieties:       topVarieties(month.varieties, dashboardTopVarieties),
		DateLabel:          monthLabel(now),
	}, nil
}

// salesBetween valora las ventas del rango y acumula por variedad.
func (uc *DashboardUseCase) salesBetween(ctx context.Context, from, to time.Time) (salesTotals, error) {
	out := salesTotals{varieties: map[entity.BeanVariety]*varietyTotals{}}
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		sales, err := tx.Sales().List(ctx, repository.Filter{From: &from, To: &to})
		if err != nil {
			return err
		}
		engine := valuation.NewEngine(tx)
		varietyOf := map[string]entity.BeanVariety{}
		for _, s := range sales {
			v, err := engine.ValueSale(ctx, s)
			if err != nil {
				return err
			}
			out.revenue = out.revenue.Add(v.Revenue)
			out.cogs = out.cogs.Add(v.COGS)
			for _, l := range v.Lines {
				variety, ok := varietyOf[l.StockItemID]
				if !ok {
					item, err := tx.Stock().Get(ctx, l.StockItemID)
					if err != nil {
						return err
					}
					variety = item.Variety
					varietyOf[l.StockItemID] = variety
				}
				vt := out.varieties[variety]
				if vt == nil {
					vt = &varietyTotals{}
					out.varieties[variety] = vt
				}
				vt.quantity = vt.quantity.Add(l.Quantity)
				vt.revenue = vt.revenue.Add(l.Revenue)
				vt.cogs = vt.cogs.Add(l.COGS)
			}
		}
		return nil
	})
	return out, err
}

func (uc *DashboardUseCase) expensesBetween(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		expenses, err := tx.Expenses().List(ctx, repository.Filter{From: &from, To: &to})
		if err != nil {
			return err
		}
		for _, e := range expenses {
			out[string(e.Category)] = out[string(e.Category)].Add(e.Amount)
		}
		return nil
	})
	return out, err
}

// stockValue valora el stock con existencias. Los ítems con trazabilidad rota se listan aparte
// y no suman al valor.
func (uc *DashboardUseCase) stockValue(ctx context.Context) (stockTotals, error) {
	var out stockTotals
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		items, err := tx.Stock().List(ctx, repository.Filter{})
		if err != nil {
			return err
		}
		resolver := lineage.NewResolver(tx)
		for _, it := range items {
			if !it.Quantity.IsPositive() {
				continue
			}
			out.kg = out.kg.Add(it.Quantity)
			cost, err := resolver.CostBasis(ctx, it.ID)
			if errors.Is(err, domain.ErrBrokenLineage) {
				out.unvalued = append(out.unvalued, it.ID)
				continue
			}
			if err != nil {
				return err
			}
			out.value = out.value.Add(cost.Mul(it.Quantity))
		}
		return nil
	})
	return out, err
}

// topVarieties ordena por ingreso descendente y corta en n.
func topVarieties(totals map[entity.BeanVariety]*varietyTotals, n int) []dto.TopVarietyDTO {
	out := make([]dto.TopVarietyDTO, 0, len(totals))
	for variety, t := range totals {
		margin := decimal.Zero
		if t.revenue.IsPositive() {
			margin = t.revenue.Sub(t.cogs).Div(t.revenue).Mul(hundred).Round(2)
		}
		out = append(out, dto.TopVarietyDTO{
			Variety:          string(variety),
			QuantitySold:     t.quantity,
			TotalRevenue:     t.revenue.Round(2),
			MarginPercentage: margin,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
			return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
		}
		return out[i].Variety < out[j].Variety
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
