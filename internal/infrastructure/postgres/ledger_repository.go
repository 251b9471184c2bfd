package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const ledgerTable = "ledger_entries"

var ledgerColumns = []string{
	"seq", "id", "stock_item_id", "delta", "balance_after",
	"origin_type", "origin_ref_id", "line_item_index", "reason", "unit_cost",
	"correcting", "occurred_at",
}

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo persiste el ledger append-only en ledger_entries; seq lo asigna el BIGSERIAL.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

type ledgerRow struct {
	Seq           int64               `db:"seq"`
	ID            string              `db:"id"`
	StockItemID   string              `db:"stock_item_id"`
	Delta         decimal.Decimal     `db:"delta"`
	BalanceAfter  decimal.Decimal     `db:"balance_after"`
	OriginType    string              `db:"origin_type"`
	OriginRefID   string              `db:"origin_ref_id"`
	LineItemIndex int                 `db:"line_item_index"`
	Reason        string              `db:"reason"`
	UnitCost      decimal.NullDecimal `db:"unit_cost"`
	Correcting    bool                `db:"correcting"`
	OccurredAt    time.Time           `db:"occurred_at"`
}

func (r ledgerRow) toEntity() *entity.LedgerEntry {
	e := &entity.LedgerEntry{
		ID:           r.ID,
		Seq:          r.Seq,
		StockItemID:  r.StockItemID,
		Delta:        r.Delta,
		BalanceAfter: r.BalanceAfter,
		Origin: entity.Origin{
			Type:          entity.OriginType(r.OriginType),
			RefID:         r.OriginRefID,
			LineItemIndex: r.LineItemIndex,
			Reason:        r.Reason,
		},
		Correcting: r.Correcting,
		OccurredAt: r.OccurredAt,
	}
	if r.UnitCost.Valid {
		cost := r.UnitCost.Decimal
		e.Origin.UnitCost = &cost
	}
	return e
}

// Insert registra la entrada y devuelve la Seq asignada por la base de datos.
func (r *LedgerRepo) Insert(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var unitCost decimal.NullDecimal
	if e.Origin.UnitCost != nil {
		unitCost = decimal.NewNullDecimal(*e.Origin.UnitCost)
	}
	query, args, err := psql.Insert(ledgerTable).
		Columns(ledgerColumns[1:]...).
		Values(
			e.ID, e.StockItemID, e.Delta, e.BalanceAfter,
			string(e.Origin.Type), e.Origin.RefID, e.Origin.LineItemIndex, e.Origin.Reason, unitCost,
			e.Correcting, e.OccurredAt,
		).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(&e.Seq); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByStockItem devuelve las entradas del ítem en orden de seq.
func (r *LedgerRepo) ListByStockItem(ctx context.Context, stockItemID string) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, sq.Eq{"stock_item_id": stockItemID})
}

// ListByOrigin devuelve las entradas generadas por un documento de origen.
func (r *LedgerRepo) ListByOrigin(ctx context.Context, originType entity.OriginType, refID string) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, sq.Eq{"origin_type": string(originType), "origin_ref_id": refID})
}

// selectLedger arma la consulta de entradas en orden de seq, que es el orden de replay.
func selectLedger(where sq.Eq) sq.SelectBuilder {
	return psql.Select(ledgerColumns...).From(ledgerTable).Where(where).OrderBy("seq")
}

func (r *LedgerRepo) list(ctx context.Context, where sq.Eq) ([]*entity.LedgerEntry, error) {
	query, args, err := selectLedger(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []ledgerRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	out := make([]*entity.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
