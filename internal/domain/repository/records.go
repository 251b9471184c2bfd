package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
)

// Filter restringe un List: igualdad de atributos, rango sobre la fecha de negocio y paginación.
// Limit <= 0 significa sin límite.
type Filter struct {
	Attrs  map[string]string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Matches aplica el filtro a un registro en memoria (usado por los backends embebidos).
func (f Filter) Matches(rec entity.Record) bool {
	if len(f.Attrs) > 0 {
		attrs := rec.Attrs()
		for k, v := range f.Attrs {
			if attrs[k] != v {
				return false
			}
		}
	}
	date := rec.BusinessDate()
	if f.From != nil && date.Before(*f.From) {
		return false
	}
	if f.To != nil && date.After(*f.To) {
		return false
	}
	return true
}

// Paginate recorta un slice ya ordenado según Limit/Offset.
func Paginate[T any](items []T, f Filter) []T {
	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return items[:0]
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items
}

// Records es el puerto genérico de persistencia (Record Store) para una colección tipada.
// Update expresa la actualización parcial como una mutación sobre el registro actual;
// el resultado se valida antes de guardarse.
type Records[T entity.Record] interface {
	Create(ctx context.Context, rec T) (string, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, mutate func(T) error) (T, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]T, error)
}
