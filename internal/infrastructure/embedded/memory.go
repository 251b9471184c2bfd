// Package embedded implementa el Record Store en memoria y su variante persistida en SQLite
// para uso offline y demos. Cada Run trabaja sobre una copia del estado y la publica al confirmar.
package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/cafetal-api/internal/domain"
	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	"github.com/jhoicas/cafetal-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Nombres de colección (también usados como buckets en SQLite).
const (
	colSuppliers      = "suppliers"
	colPurchaseOrders = "purchase_orders"
	colGrades         = "green_bean_grades"
	colRoasts         = "roast_events"
	colBlends         = "blend_events"
	colSales          = "sales"
	colCuppings       = "cupping_sessions"
	colPackaging      = "packaging"
	colAlertSettings  = "alert_settings"
	colExpenses       = "expenses"
	colTodos          = "todos"
	colStock          = "stock_items"
)

var collections = []string{
	colSuppliers, colPurchaseOrders, colGrades, colRoasts, colBlends, colSales,
	colCuppings, colPackaging, colAlertSettings, colExpenses, colTodos, colStock,
}

var errReadOnly = errors.New("embedded: escritura en una vista de solo lectura")

// state es inmutable una vez publicado; Run trabaja sobre un clone.
type state struct {
	Records map[string]map[string]json.RawMessage
	Ledger  []entity.LedgerEntry
	Seq     int64

	// Cambios desde el clone: registros escritos o borrados por colección y
	// posición del ledger donde empiezan las entradas nuevas.
	touched    map[string]map[string]struct{}
	ledgerBase int
}

// recordRef identifica un registro por colección e ID.
type recordRef struct {
	collection, id string
}

func newState() *state {
	st := &state{Records: make(map[string]map[string]json.RawMessage, len(collections))}
	for _, c := range collections {
		st.Records[c] = make(map[string]json.RawMessage)
	}
	return st
}

// clone copia los mapas; los payload JSON y las entradas del ledger son inmutables y se comparten.
func (s *state) clone() *state {
	out := &state{
		Records: make(map[string]map[string]json.RawMessage, len(s.Records)),
		Ledger:  make([]entity.LedgerEntry, len(s.Ledger), len(s.Ledger)+8),
		Seq:     s.Seq,

		touched:    make(map[string]map[string]struct{}),
		ledgerBase: len(s.Ledger),
	}
	for name, recs := range s.Records {
		out.Records[name] = maps.Clone(recs)
	}
	copy(out.Ledger, s.Ledger)
	return out
}

func (s *state) touch(collection, id string) {
	if s.touched == nil {
		s.touched = make(map[string]map[string]struct{})
	}
	if s.touched[collection] == nil {
		s.touched[collection] = make(map[string]struct{})
	}
	s.touched[collection][id] = struct{}{}
}

// changes devuelve los registros tocados en orden estable y las entradas nuevas del ledger.
func (s *state) changes() ([]recordRef, []entity.LedgerEntry) {
	var refs []recordRef
	for collection, ids := range s.touched {
		for id := range ids {
			refs = append(refs, recordRef{collection, id})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].collection != refs[j].collection {
			return refs[i].collection < refs[j].collection
		}
		return refs[i].id < refs[j].id
	})
	return refs, s.Ledger[s.ledgerBase:]
}

// normalize garantiza que todas las colecciones existan (estados cargados de versiones previas).
func (s *state) normalize() {
	if s.Records == nil {
		s.Records = make(map[string]map[string]json.RawMessage, len(collections))
	}
	for _, c := range collections {
		if s.Records[c] == nil {
			s.Records[c] = make(map[string]json.RawMessage)
		}
	}
}

// MemoryStore es el Record Store en memoria. Los escritores se serializan con mu;
// los lectores toman el estado publicado sin bloquear a nadie.
type MemoryStore struct {
	mu       sync.RWMutex
	writeMu  sync.Mutex
	current  *state
	onCommit func(context.Context, *state) error
}

var _ repository.Store = (*MemoryStore)(nil)

// NewMemoryStore construye un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{current: newState()}
}

func (s *MemoryStore) published() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn y el hook de commit terminan bien.
func (s *MemoryStore) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.published().clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	if s.onCommit != nil {
		if err := s.onCommit(ctx, work); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	s.mu.Lock()
	s.current = work
	s.mu.Unlock()
	return nil
}

// View ejecuta fn sobre el último estado publicado; cualquier escritura falla.
func (s *MemoryStore) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memTx{st: s.published(), readOnly: true})
}

// ── Transacción ─────────────────────────────────────────────────────────────

type memTx struct {
	st       *state
	readOnly bool
}

func newRecords[T entity.Record](tx *memTx, name string, newT func() T) *records[T] {
	return &records[T]{tx: tx, name: name, newT: newT}
}

func (tx *memTx) Suppliers() repository.Records[*entity.Supplier] {
	return newRecords(tx, colSuppliers, func() *entity.Supplier { return &entity.Supplier{} })
}

func (tx *memTx) PurchaseOrders() repository.Records[*entity.PurchaseOrder] {
	return newRecords(tx, colPurchaseOrders, func() *entity.PurchaseOrder { return &entity.PurchaseOrder{} })
}

func (tx *memTx) Grades() repository.Records[*entity.GreenBeanGrade] {
	return newRecords(tx, colGrades, func() *entity.GreenBeanGrade { return &entity.GreenBeanGrade{} })
}

func (tx *memTx) Roasts() repository.Records[*entity.RoastEvent] {
	return newRecords(tx, colRoasts, func() *entity.RoastEvent { return &entity.RoastEvent{} })
}

func (tx *memTx) Blends() repository.Records[*entity.BlendEvent] {
	return newRecords(tx, colBlends, func() *entity.BlendEvent { return &entity.BlendEvent{} })
}

func (tx *memTx) Sales() repository.Records[*entity.Sale] {
	return newRecords(tx, colSales, func() *entity.Sale { return &entity.Sale{} })
}

func (tx *memTx) Cuppings() repository.Records[*entity.CuppingSession] {
	return newRecords(tx, colCuppings, func() *entity.CuppingSession { return &entity.CuppingSession{} })
}

func (tx *memTx) Packaging() repository.Records[*entity.Packaging] {
	return newRecords(tx, colPackaging, func() *entity.Packaging { return &entity.Packaging{} })
}

func (tx *memTx) AlertSettings() repository.Records[*entity.AlertSetting] {
	return newRecords(tx, colAlertSettings, func() *entity.AlertSetting { return &entity.AlertSetting{} })
}

func (tx *memTx) Expenses() repository.Records[*entity.Expense] {
	return newRecords(tx, colExpenses, func() *entity.Expense { return &entity.Expense{} })
}

func (tx *memTx) Todos() repository.Records[*entity.Todo] {
	return newRecords(tx, colTodos, func() *entity.Todo { return &entity.Todo{} })
}

func (tx *memTx) Stock() repository.StockRepository {
	return &stockRecords{records: newRecords(tx, colStock, func() *entity.StockItem { return &entity.StockItem{} })}
}

func (tx *memTx) Ledger() repository.LedgerRepository { return &ledgerRecords{tx: tx} }

// ── Colección genérica ──────────────────────────────────────────────────────

type records[T entity.Record] struct {
	tx   *memTx
	name string
	newT func() T
}

func (r *records[T]) bucket() map[string]json.RawMessage { return r.tx.st.Records[r.name] }

func (r *records[T]) decode(raw json.RawMessage) (T, error) {
	rec := r.newT()
	if err := json.Unmarshal(raw, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return rec, nil
}

func (r *records[T]) put(rec T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.name, err)
	}
	r.bucket()[rec.RecordID()] = raw
	r.tx.st.touch(r.name, rec.RecordID())
	return nil
}

func (r *records[T]) Create(_ context.Context, rec T) (string, error) {
	if r.tx.readOnly {
		return "", errReadOnly
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.NewString())
	} else if _, exists := r.bucket()[rec.RecordID()]; exists {
		return "", fmt.Errorf("%s %q ya existe: %w", r.name, rec.RecordID(), domain.ErrConflict)
	}
	if err := r.put(rec); err != nil {
		return "", err
	}
	return rec.RecordID(), nil
}

func (r *records[T]) Get(_ context.Context, id string) (T, error) {
	raw, ok := r.bucket()[id]
	if !ok {
		var zero T
		return zero, domain.NotFoundError(r.name, id)
	}
	return r.decode(raw)
}

func (r *records[T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T
	if r.tx.readOnly {
		return zero, errReadOnly
	}
	rec, err := r.Get(ctx, id)
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
	if err := r.put(rec); err != nil {
		return zero, err
	}
	return rec, nil
}

func (r *records[T]) Remove(_ context.Context, id string) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	if _, ok := r.bucket()[id]; !ok {
		return domain.NotFoundError(r.name, id)
	}
	delete(r.bucket(), id)
	r.tx.st.touch(r.name, id)
	return nil
}

// List devuelve los registros filtrados, ordenados por fecha de negocio y luego por ID.
func (r *records[T]) List(_ context.Context, f repository.Filter) ([]T, error) {
	out := make([]T, 0, len(r.bucket()))
	for _, raw := range r.bucket() {
		rec, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].BusinessDate(), out[j].BusinessDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].RecordID() < out[j].RecordID()
	})
	return repository.Paginate(out, f), nil
}

// ── Stock ───────────────────────────────────────────────────────────────────

type stockRecords struct {
	*records[*entity.StockItem]
}

// Create exige cantidad cero: el saldo inicial entra por el ledger.
func (s *stockRecords) Create(ctx context.Context, item *entity.StockItem) (string, error) {
	if !item.Quantity.IsZero() {
		return "", domain.NewValidationError("quantity_kg", "la cantidad inicial se registra con un movimiento")
	}
	item.Version = 0
	return s.records.Create(ctx, item)
}

// Update preserva cantidad, versión y última actualización.
func (s *stockRecords) Update(ctx context.Context, id string, mutate func(*entity.StockItem) error) (*entity.StockItem, error) {
	return s.records.Update(ctx, id, func(item *entity.StockItem) error {
		qty, version, updated := item.Quantity, item.Version, item.LastUpdated
		if err := mutate(item); err != nil {
			return err
		}
		item.Quantity, item.Version, item.LastUpdated = qty, version, updated
		return nil
	})
}

// Remove solo elimina ítems en cero.
func (s *stockRecords) Remove(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !item.Quantity.IsZero() {
		return fmt.Errorf("stock_items %q tiene %s kg: %w", id, item.Quantity.String(), domain.ErrConflict)
	}
	return s.records.Remove(ctx, id)
}

// GetForUpdate no necesita bloqueo adicional: Run ya serializa a los escritores.
func (s *stockRecords) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	if s.tx.readOnly {
		return nil, errReadOnly
	}
	return s.Get(ctx, id)
}

func (s *stockRecords) ApplyQuantity(ctx context.Context, id string, quantity decimal.Decimal, at time.Time) error {
	if s.tx.readOnly {
		return errReadOnly
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	item.Version++
	item.LastUpdated = at
	return s.put(item)
}

// ── Ledger ──────────────────────────────────────────────────────────────────

type ledgerRecords struct {
	tx *memTx
}

func (l *ledgerRecords) Insert(_ context.Context, e *entity.LedgerEntry) error {
	if l.tx.readOnly {
		return errReadOnly
	}
	l.tx.st.Seq++
	e.Seq = l.tx.st.Seq
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	l.tx.st.Ledger = append(l.tx.st.Ledger, *e)
	return nil
}

func (l *ledgerRecords) ListByStockItem(_ context.Context, stockItemID string) ([]*entity.LedgerEntry, error) {
	return l.collect(func(e *entity.LedgerEntry) bool { return e.StockItemID == stockItemID }), nil
}

func (l *ledgerRecords) ListByOrigin(_ context.Context, originType entity.OriginType, refID string) ([]*entity.LedgerEntry, error) {
	return l.collect(func(e *entity.LedgerEntry) bool {
		return e.Origin.Type == originType && e.Origin.RefID == refID
	}), nil
}

// collect devuelve copias en orden de Seq (el slice ya está ordenado por inserción).
func (l *ledgerRecords) collect(match func(*entity.LedgerEntry) bool) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for i := range l.tx.st.Ledger {
		if match(&l.tx.st.Ledger[i]) {
			e := l.tx.st.Ledger[i]
			out = append(out, &e)
		}
	}
	return out
}
