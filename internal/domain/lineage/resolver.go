// Package lineage resuelve el costo base de un ítem de stock recorriendo hacia atrás los
// orígenes tipados del ledger (compra → tostión/mezcla → ítem).
package lineage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/inventory"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Latest resuelve considerando todas las entradas existentes.
const Latest int64 = math.MaxInt64

// Node es el costo resuelto de un ítem a una altura del ledger, con las entradas que lo explican.
type Node struct {
	StockItemID string          `json:"stock_item_id"`
	AsOfSeq     int64           `json:"as_of_seq"`
	Balance     decimal.Decimal `json:"balance_kg"`
	CostPerKg   decimal.Decimal `json:"cost_per_kg"`
	Sources     []*Source       `json:"sources"`
}

// Source es una entrada positiva del ledger y, si proviene de una transformación, los
// nodos de sus insumos resueltos a la altura del consumo.
type Source struct {
	EntryID   string           `json:"entry_id"`
	Seq       int64            `json:"seq"`
	Origin    entity.Origin    `json:"origin"`
	Quantity  decimal.Decimal  `json:"quantity_kg"`
	CostPerKg *decimal.Decimal `json:"cost_per_kg,omitempty"` // nil: ajuste sin costo, excluido
	Inputs    []*Node          `json:"inputs,omitempty"`
}

type memoKey struct {
	stockItemID string
	asOf        int64
}

// Resolver calcula costos base sobre una vista del store. Un Resolver memoiza por
// (ítem, altura) y no debe compartirse entre vistas distintas ni entre goroutines.
type Resolver struct {
	tx     repository.Tx
	memo   map[memoKey]*Node
	path   []string
	onPath map[memoKey]bool
}

// NewResolver construye un resolver atado a tx (normalmente dentro de Store.View).
func NewResolver(tx repository.Tx) *Resolver {
	return &Resolver{
		tx:     tx,
		memo:   make(map[memoKey]*Node),
		onPath: make(map[memoKey]bool),
	}
}

// CostBasis devuelve el costo por kg vigente del ítem.
func (r *Resolver) CostBasis(ctx context.Context, stockItemID string) (decimal.Decimal, error) {
	n, err := r.resolve(ctx, stockItemID, Latest)
	if err != nil {
		return decimal.Zero, err
	}
	return n.CostPerKg, nil
}

// CostBasisAt devuelve el costo por kg del ítem considerando solo entradas con Seq < asOf,
// es decir, el costo que tenía justo antes del movimiento asOf.
func (r *Resolver) CostBasisAt(ctx context.Context, stockItemID string, asOf int64) (decimal.Decimal, error) {
	n, err := r.resolve(ctx, stockItemID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return n.CostPerKg, nil
}

// Trace devuelve el árbol de trazabilidad vigente del ítem.
func (r *Resolver) Trace(ctx context.Context, stockItemID string) (*Node, error) {
	return r.resolve(ctx, stockItemID, Latest)
}

func (r *Resolver) resolve(ctx context.Context, stockItemID string, asOf int64) (*Node, error) {
	key := memoKey{stockItemID, asOf}
	if n, ok := r.memo[key]; ok {
		return n, nil
	}
	// Un ítem puede reaparecer en su propio linaje a una altura menor (una mezcla
	// reinyectada en un ítem que aportó a sus componentes); solo repetir el par
	// (ítem, altura) es un ciclo.
	if r.onPath[key] {
		path := append(append([]string{}, r.path...), stockItemID)
		return nil, &domain.CyclicLineageError{Path: path}
	}
	r.onPath[key] = true
	r.path = append(r.path, stockItemID)
	defer func() {
		delete(r.onPath, key)
		r.path = r.path[:len(r.path)-1]
	}()

	entries, err := r.tx.Ledger().ListByStockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}

	node := &Node{StockItemID: stockItemID, AsOfSeq: asOf}
	// Promedio móvil: las salidas reducen el saldo costeado sin cambiar el costo,
	// las entradas con costo se ponderan contra el saldo costeado.
	costed := decimal.Zero
	avg := decimal.Zero
	seenCost := false
	for _, e := range entries {
		if e.Seq >= asOf {
			break
		}
		node.Balance = node.Balance.Add(e.Delta)
		if !e.Delta.IsPositive() {
			costed = decimal.Max(costed.Add(e.Delta), decimal.Zero)
			continue
		}
		src, err := r.source(ctx, e)
		if err != nil {
			return nil, err
		}
		node.Sources = append(node.Sources, src)
		if src.CostPerKg == nil {
			continue
		}
		avg = inventory.CostCalculator(costed, avg, e.Delta, *src.CostPerKg)
		costed = costed.Add(e.Delta)
		seenCost = true
	}
	if !seenCost {
		return nil, &domain.BrokenLineageError{
			StockItemID: stockItemID,
			Reason:      "no hay entradas con costo conocido",
		}
	}
	node.CostPerKg = avg
	r.memo[key] = node
	return node, nil
}

// source resuelve el costo por kg de una entrada positiva según su origen.
func (r *Resolver) source(ctx context.Context, e *entity.LedgerEntry) (*Source, error) {
	src := &Source{EntryID: e.ID, Seq: e.Seq, Origin: e.Origin, Quantity: e.Delta}
	broken := func(reason string) error {
		return &domain.BrokenLineageError{StockItemID: e.StockItemID, Origin: e.Origin.String(), Reason: reason}
	}

	switch e.Origin.Type {
	case entity.OriginPurchaseReceipt:
		po, err := r.tx.PurchaseOrders().Get(ctx, e.Origin.RefID)
		if err != nil {
			return nil, r.lookupErr(err, broken("orden de compra inexistente"))
		}
		line, ok := po.Line(e.Origin.LineItemIndex)
		if !ok {
			return nil, broken(fmt.Sprintf("la orden no tiene la línea %d", e.Origin.LineItemIndex))
		}
		cost := line.UnitPrice
		src.CostPerKg = &cost

	case entity.OriginRoastOutput:
		roast, err := r.tx.Roasts().Get(ctx, e.Origin.RefID)
		if err != nil {
			return nil, r.lookupErr(err, broken("tostión inexistente"))
		}
		if roast.OutputStockItemID != e.StockItemID {
			return nil, broken("la tostión no produce este ítem")
		}
		consumed, err := r.consumptionSeqs(ctx, entity.OriginRoastConsumption, roast.ID)
		if err != nil {
			return nil, err
		}
		inputs := make([]inventory.CostedWeight, 0, len(roast.Inputs))
		for _, in := range roast.Inputs {
			seq, ok := consumed[in.StockItemID]
			if !ok {
				return nil, broken("consumo de " + in.StockItemID + " no registrado")
			}
			n, err := r.resolve(ctx, in.StockItemID, seq)
			if err != nil {
				return nil, err
			}
			src.Inputs = append(src.Inputs, n)
			inputs = append(inputs, inventory.CostedWeight{Weight: in.Weight, CostPerKg: n.CostPerKg})
		}
		cost := inventory.RoastCostPerKg(inputs, roast.OperationalCostPerKg, roast.OutputWeight)
		src.CostPerKg = &cost

	case entity.OriginBlendOutput:
		blend, err := r.tx.Blends().Get(ctx, e.Origin.RefID)
		if err != nil {
			return nil, r.lookupErr(err, broken("mezcla inexistente"))
		}
		if blend.OutputStockItemID != e.StockItemID {
			return nil, broken("la mezcla no produce este ítem")
		}
		consumed, err := r.consumptionSeqs(ctx, entity.OriginBlendConsumption, blend.ID)
		if err != nil {
			return nil, err
		}
		shares := make([]inventory.CostedShare, 0, len(blend.Components))
		for _, c := range blend.Components {
			seq, ok := consumed[c.StockItemID]
			if !ok {
				return nil, broken("consumo de " + c.StockItemID + " no registrado")
			}
			n, err := r.resolve(ctx, c.StockItemID, seq)
			if err != nil {
				return nil, err
			}
			src.Inputs = append(src.Inputs, n)
			shares = append(shares, inventory.CostedShare{Percentage: c.Percentage, CostPerKg: n.CostPerKg})
		}
		cost := inventory.BlendCostPerKg(shares)
		src.CostPerKg = &cost

	case entity.OriginManualAdjustment:
		if e.Origin.UnitCost != nil {
			cost := *e.Origin.UnitCost
			src.CostPerKg = &cost
		}

	default:
		return nil, broken("origen sin costo de entrada")
	}
	return src, nil
}

// consumptionSeqs indexa por ítem la Seq de cada consumo de un evento de transformación.
func (r *Resolver) consumptionSeqs(ctx context.Context, t entity.OriginType, refID string) (map[string]int64, error) {
	entries, err := r.tx.Ledger().ListByOrigin(ctx, t, refID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		if e.Delta.IsNegative() {
			out[e.StockItemID] = e.Seq
		}
	}
	return out, nil
}

// lookupErr convierte un NotFound en trazabilidad rota; otros errores se propagan.
func (r *Resolver) lookupErr(err, broken error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return broken
	}
	return err
}
