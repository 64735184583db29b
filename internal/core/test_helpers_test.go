package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"stockcore/pkg/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDocs keeps the encoded document in memory and lets tests inject
// failures or block saves.
type fakeDocs struct {
	mu      sync.Mutex
	data    []byte
	loads   int
	saves   int
	loadErr error
	saveErr error

	saveStarted chan struct{}
	saveRelease chan struct{}
}

func newFakeDocs(t *testing.T, seed ...string) *fakeDocs {
	t.Helper()
	c := make(domain.Collection, 0, len(seed))
	for _, s := range seed {
		c = append(c, mustArticle(t, s))
	}
	data, err := domain.EncodeCollection(c)
	if err != nil {
		t.Fatalf("encode seed: %v", err)
	}
	return &fakeDocs{data: data}
}

func (f *fakeDocs) Init(context.Context) error { return nil }

func (f *fakeDocs) Load(ctx context.Context) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ReadError(domain.DriverMemory, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, domain.ReadError(domain.DriverMemory, f.loadErr)
	}
	return domain.DecodeCollection(f.data)
}

func (f *fakeDocs) Save(ctx context.Context, c domain.Collection) error {
	if f.saveStarted != nil {
		f.saveStarted <- struct{}{}
		<-f.saveRelease
	}
	if err := ctx.Err(); err != nil {
		return domain.WriteError(domain.DriverMemory, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return domain.WriteError(domain.DriverMemory, f.saveErr)
	}
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverMemory, err)
	}
	f.data = data
	return nil
}

func (f *fakeDocs) Driver() domain.Driver { return domain.DriverMemory }

func (f *fakeDocs) Close() error { return nil }

func (f *fakeDocs) raw() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.data)
}

func (f *fakeDocs) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func mustArticle(t *testing.T, s string) domain.Article {
	t.Helper()
	var a domain.Article
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		t.Fatalf("decode article %s: %v", s, err)
	}
	return a
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

var errBoom = errors.New("boom")
