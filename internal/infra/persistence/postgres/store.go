// Package postgres stores the article document as a single row in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"stockcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/stockcore?sslmode=disable"
	// DefaultDocument names the row holding the collection.
	DefaultDocument = "articulos"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

var _ domain.DocumentStore = (*Store)(nil)

// Store persists the encoded collection under one key of a documents table.
type Store struct {
	db   *sql.DB
	name string
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN)
// and ensures the documents table exists.
func NewStore(ctx context.Context, dsn, name string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if name == "" {
		name = DefaultDocument
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureDocumentsTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, name: name}, nil
}

// TEXT keeps the document byte-for-byte; JSONB would reorder attributes.
func ensureDocumentsTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

func (s *Store) Driver() domain.Driver { return domain.DriverPostgres }

// Init seeds an empty collection unless the document row already exists.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(name,payload) VALUES($1,$2) ON CONFLICT(name) DO NOTHING`,
		s.name, "[]\n"); err != nil {
		return domain.WriteError(domain.DriverPostgres, fmt.Errorf("seed %s: %w", s.name, err))
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = $1`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ReadError(domain.DriverPostgres, fmt.Errorf("document %s not found", s.name))
	}
	if err != nil {
		return nil, domain.ReadError(domain.DriverPostgres, fmt.Errorf("select %s: %w", s.name, err))
	}
	return domain.DecodeCollection([]byte(payload))
}

func (s *Store) Save(ctx context.Context, c domain.Collection) error {
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverPostgres, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WriteError(domain.DriverPostgres, fmt.Errorf("begin tx: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents(name,payload) VALUES($1,$2) ON CONFLICT(name) DO UPDATE SET payload=EXCLUDED.payload`,
		s.name, string(data)); err != nil {
		return domain.WriteError(domain.DriverPostgres, fmt.Errorf("upsert %s: %w", s.name, err))
	}
	if err := tx.Commit(); err != nil {
		return domain.WriteError(domain.DriverPostgres, fmt.Errorf("commit: %w", err))
	}
	committed = true
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
