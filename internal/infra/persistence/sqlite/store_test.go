package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"stockcore/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "db", "stock.db"), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreLoadBeforeInitIsReadError(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Load(context.Background()); !domain.IsStorage(err, domain.OpRead) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestStoreInitSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	c, err := store.Load(ctx)
	if err != nil || len(c) != 0 {
		t.Fatalf("expected seeded empty collection: %v %v", c, err)
	}
	want, _ := domain.DecodeCollection([]byte(`[{"code":"A1","category":"dairy","price":2.50,"unit":"kg"},{"code":"B2"}]`))
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	// a second Init must not clobber saved state
	if err := store.Init(ctx); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch")
	}
	var rows int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&rows); err != nil || rows != 1 {
		t.Fatalf("expected exactly one document row, got %d (%v)", rows, err)
	}
}

func TestStoreMalformedPayloadIsFormatError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.DB().Exec(`INSERT INTO documents(name,payload) VALUES(?,?)`, DefaultDocument, []byte("{")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(ctx); !domain.IsFormat(err) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestStoreSaveAfterCloseIsWriteError(t *testing.T) {
	store := newTestStore(t)
	_ = store.Close()
	if err := store.Save(context.Background(), domain.Collection{}); !domain.IsStorage(err, domain.OpWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	if store.Driver() != domain.DriverSQLite || store.Path() == "" {
		t.Fatalf("unexpected driver/path")
	}
}
