package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const stockTable = "stock_items"

var stockColumns = []string{"id", "kind", "variety", "location", "quantity", "version", "last_updated", "created_at"}

// Atributos filtrables de stock_items (el resto de claves no coincide con nada).
var stockFilterColumns = map[string]string{"kind": "kind", "variety": "variety", "location": "location"}

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

type stockRow struct {
	ID          string          `db:"id"`
	Kind        string          `db:"kind"`
	Variety     string          `db:"variety"`
	Location    string          `db:"location"`
	Quantity    decimal.Decimal `db:"quantity"`
	Version     int64           `db:"version"`
	LastUpdated time.Time       `db:"last_updated"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r stockRow) toEntity() *entity.StockItem {
	return &entity.StockItem{
		ID:          r.ID,
		Kind:        entity.StockKind(r.Kind),
		Variety:     entity.BeanVariety(r.Variety),
		Location:    r.Location,
		Quantity:    r.Quantity,
		Version:     r.Version,
		LastUpdated: r.LastUpdated,
		CreatedAt:   r.CreatedAt,
	}
}

// Create inserta el ítem con cantidad cero; el saldo inicial entra por el ledger.
func (r *StockRepo) Create(ctx context.Context, item *entity.StockItem) (string, error) {
	if !item.Quantity.IsZero() {
		return "", domain.NewValidationError("quantity_kg", "la cantidad inicial se registra con un movimiento")
	}
	if err := item.Validate(); err != nil {
		return "", err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Version = 0
	query, args, err := psql.Insert(stockTable).Columns(stockColumns...).
		Values(item.ID, item.Kind, item.Variety, item.Location, decimal.Zero, 0, item.LastUpdated, item.CreatedAt).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("stock_items %q ya existe: %w", item.ID, domain.ErrConflict)
		}
		return "", fmt.Errorf("insert stock item: %w", err)
	}
	return item.ID, nil
}

// Get obtiene un ítem por ID.
func (r *StockRepo) Get(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.get(ctx, id, true)
}

// selectStock arma la lectura de un ítem; forUpdate agrega el bloqueo de fila.
func selectStock(id string, forUpdate bool) sq.SelectBuilder {
	b := psql.Select(stockColumns...).From(stockTable).Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	return b
}

func (r *StockRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.StockItem, error) {
	query, args, err := selectStock(id, forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var row stockRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.NotFoundError(stockTable, id)
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return row.toEntity(), nil
}

// Update aplica mutate sobre los datos descriptivos; cantidad y versión no se tocan.
func (r *StockRepo) Update(ctx context.Context, id string, mutate func(*entity.StockItem) error) (*entity.StockItem, error) {
	item, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	qty, version, updated := item.Quantity, item.Version, item.LastUpdated
	if err := mutate(item); err != nil {
		return nil, err
	}
	item.ID, item.Quantity, item.Version, item.LastUpdated = id, qty, version, updated
	if err := item.Validate(); err != nil {
		return nil, err
	}
	query, args, err := psql.Update(stockTable).
		Set("kind", item.Kind).
		Set("variety", item.Variety).
		Set("location", item.Location).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update stock item: %w", err)
	}
	return item, nil
}

// Remove solo elimina ítems en cero y sin movimientos.
func (r *StockRepo) Remove(ctx context.Context, id string) error {
	item, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if !item.Quantity.IsZero() {
		return fmt.Errorf("stock_items %q tiene %s kg: %w", id, item.Quantity.String(), domain.ErrConflict)
	}
	query, args, err := psql.Delete(stockTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("stock_items %q tiene movimientos: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete stock item: %w", err)
	}
	return nil
}

// List filtra por kind/variety/location y por fecha de último movimiento.
func (r *StockRepo) List(ctx context.Context, f repository.Filter) ([]*entity.StockItem, error) {
	b := applyFilter(psql.Select(stockColumns...).From(stockTable), "last_updated", f)
	for k, v := range f.Attrs {
		col, ok := stockFilterColumns[k]
		if !ok {
			return []*entity.StockItem{}, nil
		}
		b = b.Where(sq.Eq{col: v})
	}
	query, args, err := b.OrderBy("last_updated", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var rows []stockRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	out := make([]*entity.StockItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// ApplyQuantity refresca la cantidad materializada e incrementa la versión.
func (r *StockRepo) ApplyQuantity(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	query, args, err := psql.Update(stockTable).
		Set("quantity", quantity).
		Set("version", sq.Expr("version + 1")).
		Set("last_updated", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundError(stockTable, id)
	}
	return nil
}
