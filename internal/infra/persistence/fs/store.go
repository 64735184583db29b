// Package fs persists the article document as a JSON file on the local
// filesystem. Saves stream to a temp file in the target directory, fsync it
// and rename it over the document, so readers only ever see a complete file.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stockcore/pkg/domain"
)

// DefaultPath is used when no document path is configured.
const DefaultPath = "data/articulos.json"

var _ domain.DocumentStore = (*Store)(nil)

// Store implements domain.DocumentStore on a single local file.
type Store struct {
	path string
}

// New returns a file-backed document store. The file itself is created by Init.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}
	return &Store{path: abs}, nil
}

// Path returns the absolute document location.
func (s *Store) Path() string { return s.path }

func (s *Store) Driver() domain.Driver { return domain.DriverFilesystem }

func (s *Store) Close() error { return nil }

// Init creates the parent directory and seeds "[]" when the document is absent.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return domain.WriteError(domain.DriverFilesystem, fmt.Errorf("create dirs: %w", err))
	}
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return domain.ReadError(domain.DriverFilesystem, err)
	}
	return s.Save(ctx, domain.Collection{})
}

func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 -- path is operator configuration, not request input
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, domain.ReadError(domain.DriverFilesystem, err)
	}
	return domain.DecodeCollection(data)
}

func (s *Store) Save(ctx context.Context, c domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverFilesystem, err)
	}
	if err := s.replace(data); err != nil {
		return domain.WriteError(domain.DriverFilesystem, err)
	}
	return nil
}

func (s *Store) replace(data []byte) (retErr error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(s.path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	// atomically move into place
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	// best effort: the rename is already visible
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	return d.Sync()
}
