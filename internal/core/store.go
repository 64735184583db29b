// Package core implements the article store: validated list and mutation
// operations over a single persisted document.
package core

import (
	"context"
	"errors"
	"time"

	"stockcore/pkg/domain"
)

// DefaultMaxReaders bounds the number of concurrent List calls.
const DefaultMaxReaders int64 = 64

const (
	opList   = "list_articles"
	opCreate = "create_article"
	opUpdate = "update_article"
	opDelete = "delete_article"
)

// Store serializes access to the article document. Each call acquires and
// releases the gate itself; mutations hold it across load, mutate and save.
type Store struct {
	docs    domain.DocumentStore
	gate    *gate
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	readers int64
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger overrides the store logger.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder overrides the metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Store) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer overrides the tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMaxReaders sets how many List calls may run concurrently. Values
// below one are ignored.
func WithMaxReaders(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.readers = n
		}
	}
}

// NewStore constructs a store over docs.
func NewStore(docs domain.DocumentStore, opts ...Option) *Store {
	s := &Store{
		docs:    docs,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		readers: DefaultMaxReaders,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gate = newGate(s.readers)
	return s
}

// Driver reports the backend the store persists to.
func (s *Store) Driver() domain.Driver {
	return s.docs.Driver()
}

// List returns the current collection.
func (s *Store) List(ctx context.Context) (domain.Collection, error) {
	var out domain.Collection
	err := s.run(ctx, opList, func(ctx context.Context) error {
		release, err := s.gate.read(ctx)
		if err != nil {
			return err
		}
		defer release()
		out, err = s.docs.Load(ctx)
		return err
	})
	return out, err
}

// Create appends a new article. code, category, price and unit must be
// present and non-empty.
func (s *Store) Create(ctx context.Context, fields domain.Article) (domain.Article, error) {
	var created domain.Article
	err := s.run(ctx, opCreate, func(ctx context.Context) error {
		if missing := fields.MissingFields(domain.RequiredFields...); len(missing) > 0 {
			return &domain.ValidationError{Missing: missing}
		}
		created = fields.Clone()
		return s.mutate(ctx, func(c domain.Collection) (domain.Collection, error) {
			return append(c, created), nil
		})
	}, "code", codeOf(fields))
	if err != nil {
		return domain.Article{}, err
	}
	return created, nil
}

// Update merges partial into the first article addressed by code. The code
// itself cannot be changed.
func (s *Store) Update(ctx context.Context, code string, partial domain.Article) (domain.Article, error) {
	var merged domain.Article
	err := s.run(ctx, opUpdate, func(ctx context.Context) error {
		if _, present := partial.Get(domain.FieldCode); present && !partial.HasCode(code) {
			return &domain.ValidationError{Reason: "article code cannot be changed"}
		}
		return s.mutate(ctx, func(c domain.Collection) (domain.Collection, error) {
			idx := c.IndexOf(code)
			if idx < 0 {
				return nil, &domain.NotFoundError{Code: code}
			}
			merged = c[idx].Merge(partial)
			c[idx] = merged
			return c, nil
		})
	}, "code", code)
	if err != nil {
		return domain.Article{}, err
	}
	return merged, nil
}

// Delete removes the first article addressed by code and returns it.
func (s *Store) Delete(ctx context.Context, code string) (domain.Article, error) {
	var removed domain.Article
	err := s.run(ctx, opDelete, func(ctx context.Context) error {
		return s.mutate(ctx, func(c domain.Collection) (domain.Collection, error) {
			idx := c.IndexOf(code)
			if idx < 0 {
				return nil, &domain.NotFoundError{Code: code}
			}
			removed = c[idx]
			return append(c[:idx], c[idx+1:]...), nil
		})
	}, "code", code)
	if err != nil {
		return domain.Article{}, err
	}
	return removed, nil
}

// mutate runs one load, apply, save cycle under the exclusive gate. Nothing
// is saved when fn fails.
func (s *Store) mutate(ctx context.Context, fn func(domain.Collection) (domain.Collection, error)) error {
	release, err := s.gate.write(ctx)
	if err != nil {
		return err
	}
	defer release()

	current, err := s.docs.Load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.docs.Save(ctx, next)
}

func (s *Store) run(ctx context.Context, op string, fn func(context.Context) error, kv ...any) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	defer func() {
		duration := time.Since(start)
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, duration)
		args := append([]any{"operation", op, "driver", string(s.docs.Driver()), "duration", duration}, kv...)
		switch {
		case err == nil:
			s.logger.Debug("store operation completed", args...)
		case isClientError(err):
			s.logger.Info("store operation rejected", append(args, "error", err)...)
		default:
			s.logger.Error("store operation failed", append(args, "error", err)...)
		}
	}()
	return fn(ctx)
}

func isClientError(err error) bool {
	return domain.IsValidation(err) || domain.IsNotFound(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func codeOf(a domain.Article) string {
	if code, ok := a.Code(); ok {
		return code
	}
	raw, ok := a.Get(domain.FieldCode)
	if !ok {
		return ""
	}
	return string(raw)
}
