package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// CostBasisResult es el costo base vigente de un ítem.
type CostBasisResult struct {
	StockItemID string
	Quantity    decimal.Decimal
	CostPerKg   decimal.Decimal
	Value       decimal.Decimal // cantidad × costo
}

// GetCostBasis resuelve el costo por kg del ítem desde el ledger. Nunca devuelve cero
// por una referencia rota: en ese caso falla con BrokenLineageError.
func (uc *TraceabilityUseCase) GetCostBasis(ctx context.Context, stockItemID string) (res CostBasisResult, err error) {
	defer uc.observe("get_cost_basis", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		item, err := tx.Stock().Get(ctx, stockItemID)
		if err != nil {
			return err
		}
		cost, err := lineage.NewResolver(tx).CostBasis(ctx, stockItemID)
		if err != nil {
			return err
		}
		res = CostBasisResult{
			StockItemID: stockItemID,
			Quantity:    item.Quantity,
			CostPerKg:   cost,
			Value:       cost.Mul(item.Quantity),
		}
		return nil
	})
	return res, err
}

// GetLineage devuelve el árbol de trazabilidad del ítem.
func (uc *TraceabilityUseCase) GetLineage(ctx context.Context, stockItemID string) (node *lineage.Node, err error) {
	defer uc.observe("get_lineage", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Stock().Get(ctx, stockItemID); err != nil {
			return err
		}
		n, err := lineage.NewResolver(tx).Trace(ctx, stockItemID)
		node = n
		return err
	})
	return node, err
}

// COGSReport resume ventas, COGS y margen bruto en un rango de fechas.
type COGSReport struct {
	From        *time.Time
	To          *time.Time
	SalesCount  int
	Revenue     decimal.Decimal
	COGS        decimal.Decimal
	GrossMargin decimal.Decimal
	Sales       []valuation.SaleValuation
}

// GetCOGS valora todas las ventas del rango. Una venta con trazabilidad rota bloquea el reporte.
func (uc *TraceabilityUseCase) GetCOGS(ctx context.Context, from, to *time.Time) (rep COGSReport, err error) {
	defer uc.observe("get_cogs", time.Now(), &err)
	if from != nil && to != nil && to.Before(*from) {
		return rep, domain.NewValidationError("to", "la fecha final es anterior a la inicial")
	}
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		sales, err := tx.Sales().List(ctx, repository.Filter{From: from, To: to})
		if err != nil {
			return err
		}
		engine := valuation.NewEngine(tx)
		rep = COGSReport{From: from, To: to, SalesCount: len(sales)}
		for _, s := range sales {
			v, err := engine.ValueSale(ctx, s)
			if err != nil {
				return err
			}
			rep.Sales = append(rep.Sales, v)
			rep.Revenue = rep.Revenue.Add(v.Revenue)
			rep.COGS = rep.COGS.Add(v.COGS)
		}
		rep.GrossMargin = rep.Revenue.Sub(rep.COGS)
		return nil
	})
	return rep, err
}

// GetSaleValuation valora una venta (COGS y margen por línea).
func (uc *TraceabilityUseCase) GetSaleValuation(ctx context.Context, saleID string) (v valuation.SaleValuation, err error) {
	defer uc.observe("get_sale_valuation", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		sale, err := tx.Sales().Get(ctx, saleID)
		if err != nil {
			return err
		}
		v, err = valuation.NewEngine(tx).ValueSale(ctx, sale)
		return err
	})
	return v, err
}

// UnitEconomicsInput parametriza el HPP. Si PackagingID no está vacío, tamaño y costo
// del empaque se toman del catálogo.
type UnitEconomicsInput struct {
	StockItemID     string
	PackagingID     string
	PackagingSizeKg decimal.Decimal
	PackagingCost   decimal.Decimal
	OtherCostPerKg  decimal.Decimal
}

// GetUnitEconomics calcula el HPP por paquete y por kg.
func (uc *TraceabilityUseCase) GetUnitEconomics(ctx context.Context, in UnitEconomicsInput) (res valuation.UnitEconomics, err error) {
	defer uc.observe("get_unit_economics", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Stock().Get(ctx, in.StockItemID); err != nil {
			return err
		}
		if in.PackagingID != "" {
			p, err := tx.Packaging().Get(ctx, in.PackagingID)
			if err != nil {
				return err
			}
			in.PackagingSizeKg, in.PackagingCost = p.SizeKg, p.Cost
		}
		res, err = valuation.NewEngine(tx).UnitEconomics(ctx, in.StockItemID, in.PackagingSizeKg, in.PackagingCost, in.OtherCostPerKg)
		return err
	})
	return res, err
}

// AuditBlend compara el costo registrado de la mezcla con el recalculado.
func (uc *TraceabilityUseCase) AuditBlend(ctx context.Context, blendID string) (a valuation.Audit, err error) {
	defer uc.observe("audit_blend", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		a, err = valuation.NewEngine(tx).AuditBlend(ctx, blendID)
		return err
	})
	if err == nil && !a.Match {
		uc.log.Warn().Str("blend_id", blendID).
			Str("recorded", a.Recorded.StringFixed(2)).
			Str("recomputed", a.Recomputed.StringFixed(2)).
			Msg("costo de mezcla no coincide")
	}
	return a, err
}

// AuditRoast compara el costo registrado de la tostión con el recalculado.
func (uc *TraceabilityUseCase) AuditRoast(ctx context.Context, roastID string) (a valuation.Audit, err error) {
	defer uc.observe("audit_roast", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		a, err = valuation.NewEngine(tx).AuditRoast(ctx, roastID)
		return err
	})
	return a, err
}

// VerifyStock compara la cantidad materializada con la suma del ledger. Con stockItemID vacío
// verifica todos los ítems.
func (uc *TraceabilityUseCase) VerifyStock(ctx context.Context, stockItemID string) (out []ledger.Verification, err error) {
	defer uc.observe("verify_stock", time.Now(), &err)
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		ids := []string{stockItemID}
		if stockItemID == "" {
			items, err := tx.Stock().List(ctx, repository.Filter{})
			if err != nil {
				return err
			}
			ids = ids[:0]
			for _, it := range items {
				ids = append(ids, it.ID)
			}
		}
		for _, id := range ids {
			v, err := ledger.Verify(ctx, tx, id)
			if err != nil {
				return err
			}
			if !v.Consistent {
				uc.log.Error().Str("stock_item_id", id).
					Str("quantity_kg", v.Quantity.String()).
					Str("ledger_sum_kg", v.LedgerSum.String()).
					Msg("cantidad materializada distinta del ledger")
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

// LedgerEntries lista los movimientos de un ítem en orden cronológico.
func (uc *TraceabilityUseCase) LedgerEntries(ctx context.Context, stockItemID string) (out []*entity.LedgerEntry, err error) {
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Stock().Get(ctx, stockItemID); err != nil {
			return err
		}
		out, err = ledger.EntriesFor(ctx, tx, stockItemID)
		return err
	})
	return out, err
}

// EntriesByOrigin lista los movimientos producidos por un evento.
func (uc *TraceabilityUseCase) EntriesByOrigin(ctx context.Context, originType entity.OriginType, refID string) (out []*entity.LedgerEntry, err error) {
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		out, err = ledger.EntriesByOrigin(ctx, tx, originType, refID)
		return err
	})
	return out, err
}
