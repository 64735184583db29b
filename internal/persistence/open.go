// Package persistence selects the document backend for the article store.
// It is the only package that imports the concrete implementations under
// internal/infra/persistence.
package persistence

import (
	"context"
	"fmt"

	"stockcore/internal/config"
	"stockcore/internal/infra/persistence/fs"
	"stockcore/internal/infra/persistence/memory"
	"stockcore/internal/infra/persistence/postgres"
	"stockcore/internal/infra/persistence/s3"
	"stockcore/internal/infra/persistence/sqlite"
	"stockcore/pkg/domain"
)

// Open constructs the configured backend. The returned store still needs
// Init before first use.
func Open(ctx context.Context, cfg config.Storage) (domain.DocumentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(domain.DriverFilesystem)
	}
	switch domain.Driver(driver) {
	case domain.DriverFilesystem:
		return fs.New(cfg.DocumentPath)
	case domain.DriverMemory:
		return memory.NewStore(), nil
	case domain.DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath, cfg.DocumentName)
	case domain.DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN, cfg.DocumentName)
	case domain.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenAndInit opens the configured backend and prepares its document.
func OpenAndInit(ctx context.Context, cfg config.Storage) (domain.DocumentStore, error) {
	store, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init %s document: %w", store.Driver(), err)
	}
	return store, nil
}
