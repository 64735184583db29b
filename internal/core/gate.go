package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// gate is a FIFO read/write lock over a weighted semaphore. Readers take one
// unit; writers take the full capacity and so exclude everyone else.
type gate struct {
	sem      *semaphore.Weighted
	capacity int64
}

func newGate(capacity int64) *gate {
	if capacity < 1 {
		capacity = 1
	}
	return &gate{sem: semaphore.NewWeighted(capacity), capacity: capacity}
}

func (g *gate) read(ctx context.Context) (func(), error) {
	return g.acquire(ctx, 1)
}

func (g *gate) write(ctx context.Context) (func(), error) {
	return g.acquire(ctx, g.capacity)
}

func (g *gate) acquire(ctx context.Context, n int64) (func(), error) {
	if err := g.sem.Acquire(ctx, n); err != nil {
		return nil, fmt.Errorf("acquire store gate: %w", err)
	}
	return func() { g.sem.Release(n) }, nil
}
