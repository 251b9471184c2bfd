// Package valuation agrega costos base del resolver en COGS, costo de mezcla, HPP y márgenes.
// Ninguna operación escribe: todas leen del ledger y del store a través de un repository.Tx.
package valuation

import (
	"context"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain/lineage"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Engine calcula valoraciones sobre una vista del store.
type Engine struct {
	tx       repository.Tx
	resolver *lineage.Resolver
}

// NewEngine construye el motor con un resolver propio sobre tx.
func NewEngine(tx repository.Tx) *Engine {
	return &Engine{tx: tx, resolver: lineage.NewResolver(tx)}
}

// Resolver expone el resolver subyacente (comparte la memoización).
func (e *Engine) Resolver() *lineage.Resolver { return e.resolver }

// SaleLineValuation es el costo de una línea de venta al momento de la venta.
type SaleLineValuation struct {
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity_kg"`
	CostPerKg   decimal.Decimal `json:"cost_per_kg"`
	COGS        decimal.Decimal `json:"cogs"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SaleValuation agrupa las líneas de una venta.
type SaleValuation struct {
	SaleID      string              `json:"sale_id"`
	Lines       []SaleLineValuation `json:"lines"`
	Revenue     decimal.Decimal     `json:"revenue"`
	COGS        decimal.Decimal     `json:"cogs"`
	GrossMargin decimal.Decimal     `json:"gross_margin"`
}

// ValueSale valora cada línea con el costo base que tenía el ítem justo antes de su salida.
func (e *Engine) ValueSale(ctx context.Context, sale *entity.Sale) (SaleValuation, error) {
	entries, err := e.tx.Ledger().ListByOrigin(ctx, entity.OriginSaleConsumption, sale.ID)
	if err != nil {
		return SaleValuation{}, err
	}
	seqs := make(map[string]int64, len(entries))
	for _, le := range entries {
		seqs[le.StockItemID] = le.Seq
	}

	out := SaleValuation{SaleID: sale.ID}
	for _, l := range sale.Lines {
		seq, ok := seqs[l.StockItemID]
		if !ok {
			return SaleValuation{}, &domain.BrokenLineageError{
				StockItemID: l.StockItemID,
				Origin:      entity.SaleConsumption(sale.ID).String(),
				Reason:      "la venta no tiene salida registrada en el ledger",
			}
		}
		cost, err := e.resolver.CostBasisAt(ctx, l.StockItemID, seq)
		if err != nil {
			return SaleValuation{}, err
		}
		lv := SaleLineValuation{
			StockItemID: l.StockItemID,
			Quantity:    l.Quantity,
			CostPerKg:   cost,
			COGS:        cost.Mul(l.Quantity),
			Revenue:     l.Revenue(),
		}
		out.Lines = append(out.Lines, lv)
		out.COGS = out.COGS.Add(lv.COGS)
		out.Revenue = out.Revenue.Add(lv.Revenue)
	}
	out.GrossMargin = out.Revenue.Sub(out.COGS)
	return out, nil
}

// CostOfGoodsSold suma el COGS de las ventas. Cualquier error de trazabilidad bloquea el total.
func (e *Engine) CostOfGoodsSold(ctx context.Context, sales []*entity.Sale) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range sales {
		v, err := e.ValueSale(ctx, s)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v.COGS)
	}
	return total, nil
}

// GrossMargin = ingresos − COGS de una venta.
func (e *Engine) GrossMargin(ctx context.Context, sale *entity.Sale) (decimal.Decimal, error) {
	v, err := e.ValueSale(ctx, sale)
	if err != nil {
		return decimal.Zero, err
	}
	return v.GrossMargin, nil
}

// BlendCost calcula el costo por kg de una mezcla con los costos base vigentes de sus componentes.
func (e *Engine) BlendCost(ctx context.Context, components []entity.BlendComponent) (decimal.Decimal, error) {
	shares := make([]inventory.CostedShare, 0, len(components))
	for _, c := range components {
		cost, err := e.resolver.CostBasis(ctx, c.StockItemID)
		if err != nil {
			return decimal.Zero, err
		}
		shares = append(shares, inventory.CostedShare{Percentage: c.Percentage, CostPerKg: cost})
	}
	return inventory.BlendCostPerKg(shares), nil
}

// RoastCost calcula el costo por kg de la salida de una tostión con los costos base vigentes
// de sus entradas.
func (e *Engine) RoastCost(ctx context.Context, roast *entity.RoastEvent) (decimal.Decimal, error) {
	inputs := make([]inventory.CostedWeight, 0, len(roast.Inputs))
	for _, in := range roast.Inputs {
		cost, err := e.resolver.CostBasis(ctx, in.StockItemID)
		if err != nil {
			return decimal.Zero, err
		}
		inputs = append(inputs, inventory.CostedWeight{Weight: in.Weight, CostPerKg: cost})
	}
	return inventory.RoastCostPerKg(inputs, roast.OperationalCostPerKg, roast.OutputWeight), nil
}

// UnitEconomics es el HPP de una presentación.
type UnitEconomics struct {
	StockItemID     string          `json:"stock_item_id"`
	BeanCostPerKg   decimal.Decimal `json:"bean_cost_per_kg"`
	PackagingSizeKg decimal.Decimal `json:"packaging_size_kg"`
	PackagingCost   decimal.Decimal `json:"packaging_cost"`
	OtherCostPerKg  decimal.Decimal `json:"other_cost_per_kg"`
	CostPerPackage  decimal.Decimal `json:"cost_per_package"`
	CostPerKg       decimal.Decimal `json:"cost_per_kg"`
}

// UnitEconomics calcula costo por paquete (grano·tamaño + empaque + otros·tamaño) y por kg.
func (e *Engine) UnitEconomics(ctx context.Context, stockItemID string, packagingSizeKg, packagingCost, otherCostPerKg decimal.Decimal) (UnitEconomics, error) {
	if !packagingSizeKg.IsPositive() {
		return UnitEconomics{}, domain.NewValidationError("packaging_size_kg", "debe ser mayor que cero")
	}
	if packagingCost.IsNegative() || otherCostPerKg.IsNegative() {
		return UnitEconomics{}, domain.NewValidationError("packaging_cost", "los costos no pueden ser negativos")
	}
	bean, err := e.resolver.CostBasis(ctx, stockItemID)
	if err != nil {
		return UnitEconomics{}, err
	}
	perPackage := inventory.PackageCost(bean, packagingSizeKg, packagingCost, otherCostPerKg)
	return UnitEconomics{
		StockItemID:     stockItemID,
		BeanCostPerKg:   bean,
		PackagingSizeKg: packagingSizeKg,
		PackagingCost:   packagingCost,
		OtherCostPerKg:  otherCostPerKg,
		CostPerPackage:  perPackage,
		CostPerKg:       perPackage.Div(packagingSizeKg),
	}, nil
}

// Audit compara el costo registrado al crear un evento con el recalculado desde el ledger.
type Audit struct {
	EventID    string          `json:"event_id"`
	Recorded   decimal.Decimal `json:"recorded_cost_per_kg"`
	Recomputed decimal.Decimal `json:"recomputed_cost_per_kg"`
	Match      bool            `json:"match"`
}

// auditScale es la precisión (centavos de Rupiah) con la que se comparan los costos.
const auditScale = 2

func newAudit(id string, recorded, recomputed decimal.Decimal) Audit {
	return Audit{
		EventID:    id,
		Recorded:   recorded,
		Recomputed: recomputed,
		Match:      recorded.Round(auditScale).Equal(recomputed.Round(auditScale)),
	}
}

// AuditBlend recalcula el costo de una mezcla a la altura de sus consumos.
func (e *Engine) AuditBlend(ctx context.Context, blendID string) (Audit, error) {
	blend, err := e.tx.Blends().Get(ctx, blendID)
	if err != nil {
		return Audit{}, err
	}
	cost, err := e.outputCost(ctx, entity.BlendOutput(blend.ID), blend.OutputStockItemID)
	if err != nil {
		return Audit{}, err
	}
	return newAudit(blend.ID, blend.RecordedCostPerKg, cost), nil
}

// AuditRoast recalcula el costo de una tostión a la altura de sus consumos.
func (e *Engine) AuditRoast(ctx context.Context, roastID string) (Audit, error) {
	roast, err := e.tx.Roasts().Get(ctx, roastID)
	if err != nil {
		return Audit{}, err
	}
	cost, err := e.outputCost(ctx, entity.RoastOutput(roast.ID), roast.OutputStockItemID)
	if err != nil {
		return Audit{}, err
	}
	return newAudit(roast.ID, roast.RecordedCostPerKg, cost), nil
}

// outputCost busca la entrada de salida del evento y devuelve el costo que el resolver le asigna.
func (e *Engine) outputCost(ctx context.Context, origin entity.Origin, outputID string) (decimal.Decimal, error) {
	entries, err := e.tx.Ledger().ListByOrigin(ctx, origin.Type, origin.RefID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, le := range entries {
		if le.StockItemID != outputID || !le.Delta.IsPositive() {
			continue
		}
		node, err := e.resolver.Trace(ctx, outputID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, src := range node.Sources {
			if src.EntryID == le.ID && src.CostPerKg != nil {
				return *src.CostPerKg, nil
			}
		}
	}
	return decimal.Zero, &domain.BrokenLineageError{
		StockItemID: outputID,
		Origin:      origin.String(),
		Reason:      "el evento no tiene entrada de salida en el ledger",
	}
}
