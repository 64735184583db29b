// Package memory keeps the article document in process memory. It is used by
// tests and ephemeral deployments; contents are lost on exit.
package memory

import (
	"context"
	"errors"
	"sync"

	"stockcore/pkg/domain"
)

var _ domain.DocumentStore = (*Store)(nil)

// errNotInitialized mirrors a missing document on durable backends.
var errNotInitialized = errors.New("document not initialized")

// Store holds the encoded document so every Load decodes a fresh copy.
type Store struct {
	mu   sync.RWMutex
	data []byte
}

// NewStore returns an empty, uninitialized memory store.
func NewStore() *Store {
	return &Store{}
}

// NewSeeded returns an initialized store holding c.
func NewSeeded(c domain.Collection) (*Store, error) {
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return nil, err
	}
	return &Store{data: data}, nil
}

func (s *Store) Driver() domain.Driver { return domain.DriverMemory }

func (s *Store) Close() error { return nil }

func (s *Store) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = []byte("[]\n")
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data == nil {
		return nil, domain.ReadError(domain.DriverMemory, errNotInitialized)
	}
	return domain.DecodeCollection(data)
}

func (s *Store) Save(ctx context.Context, c domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverMemory, err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Raw returns a copy of the encoded document.
func (s *Store) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// SetRaw replaces the encoded document verbatim, bypassing validation.
func (s *Store) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}
