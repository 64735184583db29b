// Package sqlite stores the article document as a single row of an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stockcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const (
	defaultPath = "stockcore.db"
	// DefaultDocument names the row holding the collection.
	DefaultDocument = "articulos"
)

var _ domain.DocumentStore = (*Store)(nil)

// Store persists the encoded collection under one key of a documents table.
type Store struct {
	db   *sql.DB
	path string
	name string
}

// NewStore opens (creating if needed) the database at path and ensures the
// documents table exists.
func NewStore(path, name string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if name == "" {
		name = DefaultDocument
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db, path: path, name: name}, nil
}

func (s *Store) Driver() domain.Driver { return domain.DriverSQLite }

// Init seeds an empty collection unless the document row already exists.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(name,payload) VALUES(?,?) ON CONFLICT(name) DO NOTHING`,
		s.name, []byte("[]\n")); err != nil {
		return domain.WriteError(domain.DriverSQLite, fmt.Errorf("seed %s: %w", s.name, err))
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ReadError(domain.DriverSQLite, fmt.Errorf("document %s not found", s.name))
	}
	if err != nil {
		return nil, domain.ReadError(domain.DriverSQLite, fmt.Errorf("select %s: %w", s.name, err))
	}
	return domain.DecodeCollection(payload)
}

func (s *Store) Save(ctx context.Context, c domain.Collection) (retErr error) {
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverSQLite, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WriteError(domain.DriverSQLite, fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`,
		s.name, data); err != nil {
		return domain.WriteError(domain.DriverSQLite, fmt.Errorf("upsert %s: %w", s.name, err))
	}
	if err := tx.Commit(); err != nil {
		return domain.WriteError(domain.DriverSQLite, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
