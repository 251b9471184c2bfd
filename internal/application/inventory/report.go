package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// ReportGenerator genera la representación en PDF del reporte de costos (implementado con Maroto).
type ReportGenerator interface {
	CostReportPDF(ctx context.Context, report *CostReport) ([]byte, error)
}

// CostReport reúne lo necesario para el reporte HPP de un ítem: costo base, HPP por
// cada empaque del catálogo y el árbol de trazabilidad.
type CostReport struct {
	Item        *entity.StockItem
	CostPerKg   decimal.Decimal
	Value       decimal.Decimal
	Packaging   []PackagingCost
	Lineage     *lineage.Node
	Ledger      []*entity.LedgerEntry
	GeneratedAt time.Time
}

// PackagingCost es el HPP del ítem en una presentación del catálogo.
type PackagingCost struct {
	Packaging *entity.Packaging
	Economics valuation.UnitEconomics
}

// BuildCostReport arma el reporte en una sola vista del store. otherCostPerKg se aplica a
// todas las presentaciones.
func (uc *TraceabilityUseCase) BuildCostReport(ctx context.Context, stockItemID string, otherCostPerKg decimal.Decimal) (rep *CostReport, err error) {
	defer uc.observe("build_cost_report", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		item, err := tx.Stock().Get(ctx, stockItemID)
		if err != nil {
			return err
		}
		engine := valuation.NewEngine(tx)
		node, err := engine.Resolver().Trace(ctx, stockItemID)
		if err != nil {
			return err
		}
		entries, err := tx.Ledger().ListByStockItem(ctx, stockItemID)
		if err != nil {
			return err
		}
		packs, err := tx.Packaging().List(ctx, repository.Filter{})
		if err != nil {
			return err
		}
		rep = &CostReport{
			Item:        item,
			CostPerKg:   node.CostPerKg,
			Value:       node.CostPerKg.Mul(item.Quantity),
			Lineage:     node,
			Ledger:      entries,
			GeneratedAt: uc.now(),
		}
		for _, p := range packs {
			ue, err := engine.UnitEconomics(ctx, stockItemID, p.SizeKg, p.Cost, otherCostPerKg)
			if err != nil {
				return err
			}
			rep.Packaging = append(rep.Packaging, PackagingCost{Packaging: p, Economics: ue})
		}
		return nil
	})
	return rep, err
}
