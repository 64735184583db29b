package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"stockcore/internal/config"
	"stockcore/pkg/domain"
)

func TestOpenAndInitLocalDrivers(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		cfg  config.Storage
		want domain.Driver
	}{
		{config.Storage{DocumentPath: filepath.Join(dir, "doc.json")}, domain.DriverFilesystem},
		{config.Storage{Driver: "memory"}, domain.DriverMemory},
		{config.Storage{Driver: "sqlite", SQLitePath: filepath.Join(dir, "stock.db")}, domain.DriverSQLite},
	}
	for _, tc := range cases {
		t.Run(string(tc.want), func(t *testing.T) {
			store, err := OpenAndInit(context.Background(), tc.cfg)
			if err != nil {
				t.Fatalf("OpenAndInit: %v", err)
			}
			defer func() { _ = store.Close() }()
			if store.Driver() != tc.want {
				t.Fatalf("driver = %s, want %s", store.Driver(), tc.want)
			}
			c, err := store.Load(context.Background())
			if err != nil || len(c) != 0 {
				t.Fatalf("expected empty seeded document: %v %v", c, err)
			}
		})
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.Storage{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := OpenAndInit(context.Background(), config.Storage{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
