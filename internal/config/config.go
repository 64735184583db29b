// Package config loads stockd settings from the process environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"stockcore/pkg/domain"
)

// Config is the full runtime configuration for stockd.
type Config struct {
	Port            int           `env:"PORT"                         envDefault:"3000"`
	MaxReaders      int64         `env:"STOCKCORE_MAX_READERS"        envDefault:"64"`
	ShutdownTimeout time.Duration `env:"STOCKCORE_SHUTDOWN_TIMEOUT"   envDefault:"10s"`
	Trace           bool          `env:"STOCKCORE_TRACE"`
	Storage         Storage
	Log             Log
}

// Storage selects and configures the document backend.
//
//	STOCKCORE_STORAGE_DRIVER: fs|memory|sqlite|postgres|s3 (default fs)
//	STOCKCORE_DOCUMENT_PATH: JSON file when driver=fs
//	STOCKCORE_DOCUMENT_NAME: row key when driver=sqlite|postgres
//	STOCKCORE_SQLITE_PATH: database file when driver=sqlite
//	STOCKCORE_POSTGRES_DSN: connection string when driver=postgres
//	STOCKCORE_S3_*: bucket settings when driver=s3
type Storage struct {
	Driver       string `env:"STOCKCORE_STORAGE_DRIVER" envDefault:"fs"`
	DocumentPath string `env:"STOCKCORE_DOCUMENT_PATH"  envDefault:"data/articulos.json"`
	DocumentName string `env:"STOCKCORE_DOCUMENT_NAME"  envDefault:"articulos"`
	SQLitePath   string `env:"STOCKCORE_SQLITE_PATH"    envDefault:"stockcore.db"`
	PostgresDSN  string `env:"STOCKCORE_POSTGRES_DSN"`
	S3           S3
}

// S3 configures the object holding the document. Credentials fall back to
// the default AWS chain (AWS_ACCESS_KEY_ID etc.) when unset.
type S3 struct {
	Bucket          string `env:"STOCKCORE_S3_BUCKET"`
	Key             string `env:"STOCKCORE_S3_KEY"        envDefault:"articulos.json"`
	Region          string `env:"STOCKCORE_S3_REGION"     envDefault:"us-east-1"`
	Endpoint        string `env:"STOCKCORE_S3_ENDPOINT"`
	PathStyle       bool   `env:"STOCKCORE_S3_PATH_STYLE"`
	AccessKeyID     string `env:"STOCKCORE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"STOCKCORE_S3_SECRET_ACCESS_KEY"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `env:"STOCKCORE_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"STOCKCORE_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxReaders < 1 {
		return fmt.Errorf("STOCKCORE_MAX_READERS must be positive, got %d", c.MaxReaders)
	}
	switch domain.Driver(c.Storage.Driver) {
	case domain.DriverFilesystem, domain.DriverMemory, domain.DriverSQLite, domain.DriverPostgres:
	case domain.DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("STOCKCORE_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %s", c.Storage.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %s", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
