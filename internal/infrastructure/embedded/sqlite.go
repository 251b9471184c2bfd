package embedded

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/cafetal-api/internal/domain/entity"
	_ "modernc.org/sqlite" // driver SQLite en Go puro
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	payload    BLOB NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	seq     INTEGER PRIMARY KEY,
	payload BLOB NOT NULL
);`

// SQLiteStore persiste el MemoryStore en SQLite: un registro JSON por fila y el ledger como
// filas append-only. Cada Run confirmado escribe solo lo que cambió antes de publicarse;
// si la escritura falla, el Run falla.
type SQLiteStore struct {
	*MemoryStore
	db   *sql.DB
	path string
}

// OpenSQLite abre (o crea) el archivo y carga el estado guardado.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "cafetal.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	s := &SQLiteStore{MemoryStore: NewMemoryStore(), db: db, path: path}
	st, err := s.load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.current = st
	s.onCommit = s.persist
	return s, nil
}

func (s *SQLiteStore) load(ctx context.Context) (*state, error) {
	st := newState()

	rows, err := s.db.QueryContext(ctx, `SELECT collection, id, payload FROM records`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			collection, id string
			payload        []byte
		)
		if err := rows.Scan(&collection, &id, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if st.Records[collection] == nil {
			st.Records[collection] = make(map[string]json.RawMessage)
		}
		st.Records[collection][id] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	ledger, err := s.db.QueryContext(ctx, `SELECT payload FROM ledger_entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	defer func() { _ = ledger.Close() }()
	for ledger.Next() {
		var payload []byte
		if err := ledger.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		var e entity.LedgerEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode ledger: %w", err)
		}
		st.Ledger = append(st.Ledger, e)
		st.Seq = max(st.Seq, e.Seq)
	}
	if err := ledger.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	st.normalize()
	return st, nil
}

// persist escribe en una transacción los registros tocados por el Run y las entradas nuevas
// del ledger.
func (s *SQLiteStore) persist(ctx context.Context, st *state) (retErr error) {
	refs, entries := st.changes()
	if len(refs) == 0 && len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, ref := range refs {
		raw, ok := st.Records[ref.collection][ref.id]
		if !ok {
			if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, ref.collection, ref.id); err != nil {
				return fmt.Errorf("delete %s/%s: %w", ref.collection, ref.id, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records(collection, id, payload) VALUES(?, ?, ?)
			 ON CONFLICT(collection, id) DO UPDATE SET payload = excluded.payload`,
			ref.collection, ref.id, []byte(raw)); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", ref.collection, ref.id, err)
		}
	}
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode ledger %d: %w", e.Seq, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO ledger_entries(seq, payload) VALUES(?, ?)`, e.Seq, data); err != nil {
			return fmt.Errorf("insert ledger %d: %w", e.Seq, err)
		}
	}
	return tx.Commit()
}

// Close cierra la base de datos.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path devuelve la ruta configurada.
func (s *SQLiteStore) Path() string { return s.path }
