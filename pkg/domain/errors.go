package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a client payload the store refuses to apply.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "incomplete article data: missing " + strings.Join(e.Missing, ", ")
	}
	if e.Reason != "" {
		return e.Reason
	}
	return "invalid article data"
}

// NotFoundError is returned when no article carries the requested code.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article %q not found", e.Code)
}

// FormatError is returned when the persisted document cannot be parsed.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed article document: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// StorageOp names the direction of a failed storage access.
type StorageOp string

const (
	OpRead  StorageOp = "read"
	OpWrite StorageOp = "write"
)

// StorageError wraps a failure of the durable medium.
type StorageError struct {
	Op     StorageOp
	Driver Driver
	Err    error
}

func (e *StorageError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("%s storage %s: %v", e.Driver, e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ReadError wraps err as a StorageError for a failed load.
func ReadError(driver Driver, err error) error {
	return &StorageError{Op: OpRead, Driver: driver, Err: err}
}

// WriteError wraps err as a StorageError for a failed save.
func WriteError(driver Driver, err error) error {
	return &StorageError{Op: OpWrite, Driver: driver, Err: err}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsFormat reports whether err carries a *FormatError.
func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}

// IsStorage reports whether err carries a *StorageError for op. An empty op
// matches either direction.
func IsStorage(err error, op StorageOp) bool {
	var target *StorageError
	if !errors.As(err, &target) {
		return false
	}
	return op == "" || target.Op == op
}
