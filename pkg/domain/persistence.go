package domain

import "context"

// Driver identifies a concrete document backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"       // local JSON file (default)
	DriverMemory     Driver = "memory"   // in-process only (tests / ephemeral)
	DriverSQLite     Driver = "sqlite"   // embedded sqlite file
	DriverPostgres   Driver = "postgres" // PostgreSQL server
	DriverS3         Driver = "s3"       // S3 / MinIO compatible object
)

// DocumentStore reads and writes the whole article collection as a single
// document. Implementations own all I/O with the durable medium; callers
// serialize mutating cycles.
type DocumentStore interface {
	// Init prepares the medium and seeds an empty collection when no
	// document exists yet.
	Init(ctx context.Context) error
	// Load returns the persisted collection. Failures are *StorageError
	// (OpRead) or *FormatError.
	Load(ctx context.Context) (Collection, error)
	// Save replaces the document with c. The replacement is all-or-nothing:
	// on failure the previous document stays loadable. Failures are
	// *StorageError (OpWrite).
	Save(ctx context.Context, c Collection) error
	// Driver returns the backend identifier.
	Driver() Driver
	// Close releases connections held by the backend.
	Close() error
}
