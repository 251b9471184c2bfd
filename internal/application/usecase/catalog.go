// Package usecase contiene los casos de uso CRUD del catálogo: proveedores, órdenes de compra,
// clasificaciones, cataciones, empaques, alertas de stock, gastos e ítems de stock.
package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

// reader es la parte de solo lectura de una colección del Record Store.
type reader[T entity.Record] struct {
	store repository.Store
	repo  func(repository.Tx) repository.Records[T]
}

// GetByID obtiene un registro; ErrNotFound si no existe.
func (c reader[T]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := c.store.View(ctx, func(tx repository.Tx) error {
		rec, err := c.repo(tx).Get(ctx, id)
		out = rec
		return err
	})
	return out, err
}

// List devuelve los registros filtrados y paginados.
func (c reader[T]) List(ctx context.Context, f repository.Filter) ([]T, error) {
	var out []T
	err := c.store.View(ctx, func(tx repository.Tx) error {
		list, err := c.repo(tx).List(ctx, f)
		out = list
		return err
	})
	return out, err
}

// crud implementa las operaciones comunes sobre una colección del Record Store.
// Cada caso de uso concreto lo embebe y agrega sus reglas.
type crud[T entity.Record] struct {
	reader[T]
	now func() time.Time
}

func newCRUD[T entity.Record](store repository.Store, repo func(repository.Tx) repository.Records[T]) crud[T] {
	return crud[T]{reader: reader[T]{store: store, repo: repo}, now: func() time.Time { return time.Now().UTC() }}
}

// Delete elimina un registro por ID.
func (c crud[T]) Delete(ctx context.Context, id string) error {
	return c.store.Run(ctx, func(tx repository.Tx) error {
		return c.repo(tx).Remove(ctx, id)
	})
}

// create guarda rec después de check, en la misma transacción.
func (c crud[T]) create(ctx context.Context, rec T, check func(repository.Tx) error) (T, error) {
	err := c.store.Run(ctx, func(tx repository.Tx) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		_, err := c.repo(tx).Create(ctx, rec)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// update aplica mutate sobre el registro actual dentro de la transacción.
func (c crud[T]) update(ctx context.Context, id string, mutate func(repository.Tx, T) error) (T, error) {
	var out T
	err := c.store.Run(ctx, func(tx repository.Tx) error {
		rec, err := c.repo(tx).Update(ctx, id, func(r T) error { return mutate(tx, r) })
		out = rec
		return err
	})
	return out, err
}

// orNow devuelve *t o la hora actual.
func (c crud[T]) orNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return c.now()
	}
	return t.UTC()
}
