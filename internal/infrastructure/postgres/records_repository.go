package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

const recordsTable = "records"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RecordsRepo guarda una colección tipada como filas JSONB de la tabla records.
type RecordsRepo[T entity.Record] struct {
	q          Querier
	collection string
	newT       func() T
}

func newRecords[T entity.Record](q Querier, collection string, newT func() T) *RecordsRepo[T] {
	return &RecordsRepo[T]{q: q, collection: collection, newT: newT}
}

func (r *RecordsRepo[T]) encode(rec T) (payload, attrs []byte, err error) {
	if payload, err = json.Marshal(rec); err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", r.collection, err)
	}
	if attrs, err = json.Marshal(rec.Attrs()); err != nil {
		return nil, nil, fmt.Errorf("encode attrs %s: %w", r.collection, err)
	}
	return payload, attrs, nil
}

func (r *RecordsRepo[T]) decode(payload []byte) (T, error) {
	rec := r.newT()
	if err := json.Unmarshal(payload, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", r.collection, err)
	}
	return rec, nil
}

// Create valida e inserta el registro; asigna un UUID si no trae ID.
func (r *RecordsRepo[T]) Create(ctx context.Context, rec T) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.NewString())
	}
	payload, attrs, err := r.encode(rec)
	if err != nil {
		return "", err
	}
	query, args, err := psql.Insert(recordsTable).
		Columns("collection", "id", "business_date", "attrs", "payload").
		Values(r.collection, rec.RecordID(), rec.BusinessDate(), attrs, payload).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s %q ya existe: %w", r.collection, rec.RecordID(), domain.ErrConflict)
		}
		return "", fmt.Errorf("insert %s: %w", r.collection, err)
	}
	return rec.RecordID(), nil
}

// Get obtiene un registro por ID.
func (r *RecordsRepo[T]) Get(ctx context.Context, id string) (T, error) {
	return r.get(ctx, id, "")
}

func (r *RecordsRepo[T]) get(ctx context.Context, id, suffix string) (T, error) {
	var zero T
	b := psql.Select("payload").From(recordsTable).
		Where(sq.Eq{"collection": r.collection, "id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return zero, fmt.Errorf("build select: %w", err)
	}
	var payload []byte
	if err := r.q.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, domain.NotFoundError(r.collection, id)
		}
		return zero, fmt.Errorf("get %s: %w", r.collection, err)
	}
	return r.decode(payload)
}

// Update bloquea la fila, aplica mutate y guarda el resultado validado.
func (r *RecordsRepo[T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T
	rec, err := r.get(ctx, id, "FOR UPDATE")
	if err != nil {
		return zero, err
	}
	if err := mutate(rec); err != nil {
		return zero, err
	}
	rec.SetRecordID(id)
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	payload, attrs, err := r.encode(rec)
	if err != nil {
		return zero, err
	}
	query, args, err := psql.Update(recordsTable).
		Set("business_date", rec.BusinessDate()).
		Set("attrs", attrs).
		Set("payload", payload).
		Where(sq.Eq{"collection": r.collection, "id": id}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("build update: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return zero, fmt.Errorf("update %s: %w", r.collection, err)
	}
	return rec, nil
}

// Remove elimina un registro por ID.
func (r *RecordsRepo[T]) Remove(ctx context.Context, id string) error {
	query, args, err := psql.Delete(recordsTable).
		Where(sq.Eq{"collection": r.collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.collection, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundError(r.collection, id)
	}
	return nil
}

// List filtra por atributos (attrs @> filtro), rango de fecha de negocio y paginación.
func (r *RecordsRepo[T]) List(ctx context.Context, f repository.Filter) ([]T, error) {
	b := applyFilter(psql.Select("payload").From(recordsTable).
		Where(sq.Eq{"collection": r.collection}), "business_date", f)
	if len(f.Attrs) > 0 {
		attrs, err := json.Marshal(f.Attrs)
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		b = b.Where(sq.Expr("attrs @> ?::jsonb", string(attrs)))
	}
	query, args, err := b.OrderBy("business_date", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var payloads [][]byte
	if err := pgxscan.Select(ctx, r.q, &payloads, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	out := make([]T, 0, len(payloads))
	for _, p := range payloads {
		rec, err := r.decode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// applyFilter agrega rango de fechas y paginación de un Filter a un SELECT.
func applyFilter(b sq.SelectBuilder, dateColumn string, f repository.Filter) sq.SelectBuilder {
	if f.From != nil {
		b = b.Where(sq.GtOrEq{dateColumn: *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{dateColumn: *f.To})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b
}
