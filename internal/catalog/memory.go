package catalog

import (
	"context"
	"sync"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

// MemoryStore is a process-local DurableStore. It survives cache TTLs but not restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.Collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*domain.Collection)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return col.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, c *domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = c.Clone()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*domain.Collection)
	return nil
}

type durableFallback struct {
	store DurableStore
}

// DurableFallback serves the last stored copy of a query, regardless of its age.
func DurableFallback(store DurableStore) Fallback {
	return durableFallback{store: store}
}

func (f durableFallback) Lookup(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error) {
	col, err := f.store.Load(ctx, q.Key())
	if err != nil {
		return nil, err
	}
	col.Source = domain.SourceDurable
	return col, nil
}
