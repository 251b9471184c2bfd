package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

var _ repository.Store = (*Store)(nil)

// Store implementa repository.Store sobre PostgreSQL: cada Run es una transacción
// READ COMMITTED con bloqueos de fila; cada View es REPEATABLE READ de solo lectura.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el store con el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate crea las tablas si no existen.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

var (
	writeTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
	readTxOptions  = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.runTx(ctx, writeTxOptions, fn)
}

// View ejecuta fn sobre una instantánea consistente de solo lectura.
func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.runTx(ctx, readTxOptions, fn)
}

func (s *Store) runTx(ctx context.Context, opts pgx.TxOptions, fn func(tx repository.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(&pgTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pgTx expone los repositorios atados a una transacción.
type pgTx struct {
	q Querier
}

func (t *pgTx) Suppliers() repository.Records[*entity.Supplier] {
	return newRecords(t.q, "suppliers", func() *entity.Supplier { return &entity.Supplier{} })
}

func (t *pgTx) PurchaseOrders() repository.Records[*entity.PurchaseOrder] {
	return newRecords(t.q, "purchase_orders", func() *entity.PurchaseOrder { return &entity.PurchaseOrder{} })
}

func (t *pgTx) Grades() repository.Records[*entity.GreenBeanGrade] {
	return newRecords(t.q, "green_bean_grades", func() *entity.GreenBeanGrade { return &entity.GreenBeanGrade{} })
}

func (t *pgTx) Roasts() repository.Records[*entity.RoastEvent] {
	return newRecords(t.q, "roast_events", func() *entity.RoastEvent { return &entity.RoastEvent{} })
}

func (t *pgTx) Blends() repository.Records[*entity.BlendEvent] {
	return newRecords(t.q, "blend_events", func() *entity.BlendEvent { return &entity.BlendEvent{} })
}

func (t *pgTx) Sales() repository.Records[*entity.Sale] {
	return newRecords(t.q, "sales", func() *entity.Sale { return &entity.Sale{} })
}

func (t *pgTx) Cuppings() repository.Records[*entity.CuppingSession] {
	return newRecords(t.q, "cupping_sessions", func() *entity.CuppingSession { return &entity.CuppingSession{} })
}

func (t *pgTx) Packaging() repository.Records[*entity.Packaging] {
	return newRecords(t.q, "packaging", func() *entity.Packaging { return &entity.Packaging{} })
}

func (t *pgTx) AlertSettings() repository.Records[*entity.AlertSetting] {
	return newRecords(t.q, "alert_settings", func() *entity.AlertSetting { return &entity.AlertSetting{} })
}

func (t *pgTx) Expenses() repository.Records[*entity.Expense] {
	return newRecords(t.q, "expenses", func() *entity.Expense { return &entity.Expense{} })
}

func (t *pgTx) Todos() repository.Records[*entity.Todo] {
	return newRecords(t.q, "todos", func() *entity.Todo { return &entity.Todo{} })
}

func (t *pgTx) Stock() repository.StockRepository { return NewStockRepository(t.q) }

func (t *pgTx) Ledger() repository.LedgerRepository { return NewLedgerRepository(t.q) }
