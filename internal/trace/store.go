package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store persists run traces in SQLite.
//
// The database is opened with WAL mode, NORMAL synchronous, a busy
// timeout for lock contention, and foreign keys on. SQLite has a
// single writer, so the pool is pinned to one connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the trace database at path. Pass ":memory:"
// for an ephemeral store. Idempotent; the schema is applied on every
// open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to trace database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run is a stored run header.
type Run struct {
	ID          string
	Component   string
	Fingerprint string
	Cycles      int
	CreatedAt   string
}

// BeginRun inserts a run header. Duplicate IDs are silently ignored
// so replayed recordings stay idempotent.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, component, fingerprint, cycles)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.Component, r.Fingerprint, r.Cycles)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteEvent inserts one event. Duplicate (run, seq) pairs are
// silently ignored.
func (s *Store) WriteEvent(ctx context.Context, runID string, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, kind, cycle, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, e.Seq, e.Kind, e.Cycle, e.Value)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Runs lists stored runs ordered by ID. UUIDv7 IDs make that creation
// order.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, component, fingerprint, cycles, created_at
		FROM runs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Component, &r.Fingerprint, &r.Cycles, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Events returns a run's events in seq order.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, cycle, value
		FROM events WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Cycle, &e.Value); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountKind returns how many events of the given kind a run recorded.
func (s *Store) CountKind(ctx context.Context, runID, kind string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events WHERE run_id = ? AND kind = ?
	`, runID, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
