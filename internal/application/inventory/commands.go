package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/ledger"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/jhoicas/cafetal-api/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// ── Recepción de compra ─────────────────────────────────────────────────────

// ReceivePurchaseInput recibe una cantidad de una línea de orden de compra.
// Si StockItemID está vacío se crea un ítem de grano verde en Location.
type ReceivePurchaseInput struct {
	PurchaseOrderID string
	LineItemIndex   int
	Quantity        decimal.Decimal
	StockItemID     string
	Location        string
	ReceivedAt      time.Time
}

// ReceiptResult es el resultado de una recepción.
type ReceiptResult struct {
	Entry         *entity.LedgerEntry
	StockItem     *entity.StockItem
	PurchaseOrder *entity.PurchaseOrder
}

// ReceivePurchase registra la entrada de grano verde de una orden aprobada. Rechaza recibir más
// de lo pendiente en la línea y completa la orden cuando todas las líneas quedan recibidas.
func (uc *TraceabilityUseCase) ReceivePurchase(ctx context.Context, in ReceivePurchaseInput) (res ReceiptResult, err error) {
	defer uc.observe("receive_purchase", time.Now(), &err)
	if !in.Quantity.IsPositive() {
		return res, domain.NewValidationError("quantity_kg", "debe ser mayor que cero")
	}
	at := uc.orNow(in.ReceivedAt)

	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		po, err := tx.PurchaseOrders().Get(ctx, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.Status != entity.POStatusApproved {
			return domain.NewValidationError("status", "solo se reciben órdenes aprobadas (estado %s)", po.Status)
		}
		line, ok := po.Line(in.LineItemIndex)
		if !ok {
			return domain.NewValidationError("line_item_index", "la orden no tiene la línea %d", in.LineItemIndex)
		}
		if in.Quantity.GreaterThan(line.Outstanding()) {
			return domain.NewValidationError("quantity_kg", "excede lo pendiente de la línea (%s kg)", line.Outstanding().String())
		}

		item, err := uc.outputItem(ctx, tx, in.StockItemID, entity.KindGreenBean, line.Variety, in.Location, at)
		if err != nil {
			return err
		}
		entry, err := uc.append(ctx, tx, item.ID, in.Quantity, entity.PurchaseReceipt(po.ID, in.LineItemIndex), at)
		if err != nil {
			return err
		}

		po, err = tx.PurchaseOrders().Update(ctx, po.ID, func(p *entity.PurchaseOrder) error {
			p.LineItems[in.LineItemIndex].ReceivedQuantity = p.LineItems[in.LineItemIndex].ReceivedQuantity.Add(in.Quantity)
			p.UpdatedAt = at
			if p.FullyReceived() {
				return p.TransitionTo(entity.POStatusCompleted)
			}
			return nil
		})
		if err != nil {
			return err
		}
		item, err = tx.Stock().Get(ctx, item.ID)
		if err != nil {
			return err
		}
		res = ReceiptResult{Entry: entry, StockItem: item, PurchaseOrder: po}
		return nil
	})
	if err != nil {
		return ReceiptResult{}, err
	}
	uc.appended([]*entity.LedgerEntry{res.Entry})
	uc.log.Info().
		Str("purchase_order_id", in.PurchaseOrderID).
		Int("line", in.LineItemIndex).
		Str("stock_item_id", res.StockItem.ID).
		Str("quantity_kg", in.Quantity.String()).
		Str("po_status", string(res.PurchaseOrder.Status)).
		Msg("compra recibida")
	return res, nil
}

// ── Tostión ─────────────────────────────────────────────────────────────────

// RecordRoastInput describe una tostión (interna o en tostadora externa).
type RecordRoastInput struct {
	BatchID              string
	RoastDate            time.Time
	Mode                 entity.RoastMode
	Roaster              string
	Inputs               []entity.RoastInput
	OutputQuantity       decimal.Decimal
	OperationalCostPerKg decimal.Decimal
	OutputStockItemID    string
	Location             string
	Profile              entity.RoastProfile
	Notes                string
}

// TransformResult es el resultado de una tostión o mezcla.
type TransformResult struct {
	EventID   string
	Output    *entity.StockItem
	CostPerKg decimal.Decimal
	Entries   []*entity.LedgerEntry
}

// RecordRoast consume grano verde y produce grano tostado. El costo por kg de la salida se
// calcula con los costos base vigentes de las entradas y queda registrado en el evento.
func (uc *TraceabilityUseCase) RecordRoast(ctx context.Context, in RecordRoastInput) (res TransformResult, err error) {
	defer uc.observe("record_roast", time.Now(), &err)
	at := uc.orNow(in.RoastDate)
	if in.Mode == "" {
		in.Mode = entity.RoastModeInternal
	}
	if in.BatchID == "" {
		in.BatchID = "RB-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:6])
	}

	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		variety := entity.BeanVariety("")
		for _, input := range in.Inputs {
			item, err := tx.Stock().GetForUpdate(ctx, input.StockItemID)
			if err != nil {
				return err
			}
			if item.Kind != entity.KindGreenBean {
				return domain.NewValidationError("inputs.stock_item_id", "el ítem %s no es grano verde", item.ID)
			}
			if variety == "" || variety == item.Variety {
				variety = item.Variety
			} else {
				variety = entity.VarietyBlend
			}
		}

		roast := &entity.RoastEvent{
			ID:                   uuid.NewString(),
			BatchID:              in.BatchID,
			RoastDate:            at,
			Mode:                 in.Mode,
			Roaster:              in.Roaster,
			Inputs:               in.Inputs,
			OutputStockItemID:    in.OutputStockItemID,
			OutputWeight:         in.OutputQuantity,
			OperationalCostPerKg: in.OperationalCostPerKg,
			Profile:              in.Profile,
			Notes:                in.Notes,
			CreatedAt:            uc.now(),
		}
		draft := *roast
		if draft.OutputStockItemID == "" {
			draft.OutputStockItemID = uuid.NewString()
		}
		if err := draft.Validate(); err != nil {
			return err
		}

		output, err := uc.outputItem(ctx, tx, in.OutputStockItemID, entity.KindRoastedBean, variety, in.Location, at)
		if err != nil {
			return err
		}
		roast.OutputStockItemID = output.ID

		engine := valuation.NewEngine(tx)
		cost, err := engine.RoastCost(ctx, roast)
		if err != nil {
			return err
		}
		roast.RecordedCostPerKg = cost
		if _, err := tx.Roasts().Create(ctx, roast); err != nil {
			return err
		}

		entries := make([]*entity.LedgerEntry, 0, len(in.Inputs)+1)
		for _, input := range roast.Inputs {
			e, err := uc.append(ctx, tx, input.StockItemID, input.Weight.Neg(), entity.RoastConsumption(roast.ID), at)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		e, err := uc.append(ctx, tx, output.ID, roast.OutputWeight, entity.RoastOutput(roast.ID), at)
		if err != nil {
			return err
		}
		entries = append(entries, e)

		if output, err = tx.Stock().Get(ctx, output.ID); err != nil {
			return err
		}
		res = TransformResult{EventID: roast.ID, Output: output, CostPerKg: cost, Entries: entries}
		return nil
	})
	if err != nil {
		return TransformResult{}, err
	}
	uc.appended(res.Entries)
	uc.log.Info().
		Str("roast_id", res.EventID).
		Str("batch_id", in.BatchID).
		Str("mode", string(in.Mode)).
		Str("output_stock_item_id", res.Output.ID).
		Str("cost_per_kg", res.CostPerKg.StringFixed(2)).
		Msg("tostión registrada")
	return res, nil
}

// ── Mezcla ──────────────────────────────────────────────────────────────────

// RecordBlendInput describe una mezcla de lotes tostados.
type RecordBlendInput struct {
	Name              string
	BlendDate         time.Time
	Components        []entity.BlendComponent
	OutputQuantity    decimal.Decimal
	OutputStockItemID string
	Location          string
	Notes             string
}

// RecordBlend consume porcentaje·salida/100 kg de cada componente y produce el ítem mezclado.
func (uc *TraceabilityUseCase) RecordBlend(ctx context.Context, in RecordBlendInput) (res TransformResult, err error) {
	defer uc.observe("record_blend", time.Now(), &err)
	at := uc.orNow(in.BlendDate)

	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		blend := &entity.BlendEvent{
			ID:                uuid.NewString(),
			Name:              in.Name,
			BlendDate:         at,
			Components:        in.Components,
			OutputStockItemID: in.OutputStockItemID,
			OutputWeight:      in.OutputQuantity,
			Notes:             in.Notes,
			CreatedAt:         uc.now(),
		}
		draft := *blend
		if draft.OutputStockItemID == "" {
			draft.OutputStockItemID = uuid.NewString()
		}
		if err := draft.Validate(); err != nil {
			return err
		}
		for _, c := range in.Components {
			item, err := tx.Stock().GetForUpdate(ctx, c.StockItemID)
			if err != nil {
				return err
			}
			if item.Kind != entity.KindRoastedBean {
				return domain.NewValidationError("components.stock_item_id", "el ítem %s no es grano tostado", item.ID)
			}
		}

		output, err := uc.outputItem(ctx, tx, in.OutputStockItemID, entity.KindRoastedBean, entity.VarietyBlend, in.Location, at)
		if err != nil {
			return err
		}
		blend.OutputStockItemID = output.ID

		cost, err := valuation.NewEngine(tx).BlendCost(ctx, blend.Components)
		if err != nil {
			return err
		}
		blend.RecordedCostPerKg = cost
		if _, err := tx.Blends().Create(ctx, blend); err != nil {
			return err
		}

		entries := make([]*entity.LedgerEntry, 0, len(blend.Components)+1)
		for _, c := range blend.Components {
			e, err := uc.append(ctx, tx, c.StockItemID, c.Weight(blend.OutputWeight).Neg(), entity.BlendConsumption(blend.ID), at)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		e, err := uc.append(ctx, tx, output.ID, blend.OutputWeight, entity.BlendOutput(blend.ID), at)
		if err != nil {
			return err
		}
		entries = append(entries, e)

		if output, err = tx.Stock().Get(ctx, output.ID); err != nil {
			return err
		}
		res = TransformResult{EventID: blend.ID, Output: output, CostPerKg: cost, Entries: entries}
		return nil
	})
	if err != nil {
		return TransformResult{}, err
	}
	uc.appended(res.Entries)
	uc.log.Info().
		Str("blend_id", res.EventID).
		Str("name", in.Name).
		Str("output_stock_item_id", res.Output.ID).
		Str("cost_per_kg", res.CostPerKg.StringFixed(2)).
		Msg("mezcla registrada")
	return res, nil
}

// ── Venta ───────────────────────────────────────────────────────────────────

// RecordSaleInput describe una venta con una o más líneas.
type RecordSaleInput struct {
	InvoiceNumber   string
	Customer        string
	SaleDate        time.Time
	Lines           []entity.SaleLine
	PaymentStatus   entity.PaymentStatus
	ShippingAddress string
	Notes           string
}

// SaleResult es la venta confirmada con sus salidas de ledger.
type SaleResult struct {
	Sale    *entity.Sale
	Entries []*entity.LedgerEntry
}

// RecordSale registra la venta y una salida por línea. Falla con InsufficientStockError si alguna
// línea supera el disponible; en ese caso no se registra nada.
func (uc *TraceabilityUseCase) RecordSale(ctx context.Context, in RecordSaleInput) (res SaleResult, err error) {
	defer uc.observe("record_sale", time.Now(), &err)
	at := uc.orNow(in.SaleDate)
	if in.PaymentStatus == "" {
		in.PaymentStatus = entity.PaymentUnpaid
	}
	if in.InvoiceNumber == "" {
		in.InvoiceNumber = "INV-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
	}

	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		sale := &entity.Sale{
			ID:              uuid.NewString(),
			InvoiceNumber:   in.InvoiceNumber,
			Customer:        in.Customer,
			SaleDate:        at,
			Lines:           in.Lines,
			PaymentStatus:   in.PaymentStatus,
			ShippingAddress: in.ShippingAddress,
			Notes:           in.Notes,
			CreatedAt:       uc.now(),
		}
		if _, err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}
		entries := make([]*entity.LedgerEntry, 0, len(sale.Lines))
		for _, l := range sale.Lines {
			e, err := uc.append(ctx, tx, l.StockItemID, l.Quantity.Neg(), entity.SaleConsumption(sale.ID), at)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		res = SaleResult{Sale: sale, Entries: entries}
		return nil
	})
	if err != nil {
		return SaleResult{}, err
	}
	uc.appended(res.Entries)
	uc.log.Info().
		Str("sale_id", res.Sale.ID).
		Str("invoice_number", res.Sale.InvoiceNumber).
		Str("revenue", res.Sale.Revenue().StringFixed(2)).
		Msg("venta registrada")
	return res, nil
}

// ── Ajuste manual ───────────────────────────────────────────────────────────

// AdjustStockInput es un ajuste manual (merma, conteo físico, saldo inicial).
// UnitCost solo aplica a ajustes positivos; Correcting permite dejar el saldo en negativo.
type AdjustStockInput struct {
	StockItemID string
	Delta       decimal.Decimal
	Reason      string
	UnitCost    *decimal.Decimal
	Correcting  bool
	AdjustedAt  time.Time
}

// AdjustStock registra un ajuste manual sobre un ítem.
func (uc *TraceabilityUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (entry *entity.LedgerEntry, err error) {
	defer uc.observe("adjust_stock", time.Now(), &err)
	if in.UnitCost != nil && !in.Delta.IsPositive() {
		return nil, domain.NewValidationError("unit_cost", "solo los ajustes positivos llevan costo")
	}
	at := uc.orNow(in.AdjustedAt)
	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		e, err := ledger.Append(ctx, tx, in.StockItemID, in.Delta, entity.ManualAdjustment(in.Reason, in.UnitCost),
			ledger.AppendOptions{Correcting: in.Correcting, OccurredAt: at})
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.appended([]*entity.LedgerEntry{entry})
	uc.log.Info().
		Str("stock_item_id", in.StockItemID).
		Str("delta_kg", in.Delta.String()).
		Bool("correcting", in.Correcting).
		Str("reason", in.Reason).
		Msg("ajuste manual registrado")
	return entry, nil
}

// CreateStockItemInput crea un ítem y, si OpeningQuantity > 0, registra el saldo inicial
// como ajuste manual con costo.
type CreateStockItemInput struct {
	Kind            entity.StockKind
	Variety         entity.BeanVariety
	Location        string
	OpeningQuantity decimal.Decimal
	OpeningCost     *decimal.Decimal
}

// CreateStockItem da de alta un ítem de stock con cantidad cero o con saldo inicial.
func (uc *TraceabilityUseCase) CreateStockItem(ctx context.Context, in CreateStockItemInput) (item *entity.StockItem, err error) {
	defer uc.observe("create_stock_item", time.Now(), &err)
	if in.OpeningQuantity.IsNegative() {
		return nil, domain.NewValidationError("opening_quantity_kg", "no puede ser negativo")
	}
	at := uc.now()
	var entry *entity.LedgerEntry
	err = uc.store.Run(ctx, func(tx repository.Tx) error {
		item = &entity.StockItem{Kind: in.Kind, Variety: in.Variety, Location: in.Location, LastUpdated: at, CreatedAt: at}
		if _, err := tx.Stock().Create(ctx, item); err != nil {
			return err
		}
		if !in.OpeningQuantity.IsPositive() {
			return nil
		}
		reason := fmt.Sprintf("saldo inicial %s", in.Location)
		if entry, err = uc.append(ctx, tx, item.ID, in.OpeningQuantity, entity.ManualAdjustment(reason, in.OpeningCost), at); err != nil {
			return err
		}
		item, err = tx.Stock().Get(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entry != nil {
		uc.appended([]*entity.LedgerEntry{entry})
	}
	return item, nil
}
