package testutil

import (
	"context"
	"sync"

	"github.com/andresuchdata/b2b-portal/internal/cache"
)

// Snapshots is an in-memory cache.SnapshotStore keyed by scope.
type Snapshots struct {
	mu    sync.Mutex
	Saved map[string]*cache.CatalogSnapshot
}

func NewSnapshots() *Snapshots {
	return &Snapshots{Saved: map[string]*cache.CatalogSnapshot{}}
}

func (s *Snapshots) Load(ctx context.Context, scope string) (*cache.CatalogSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.Saved[scope]
	return snap, ok, nil
}

func (s *Snapshots) Save(ctx context.Context, scope string, snap *cache.CatalogSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved[scope] = snap
	return nil
}

func (s *Snapshots) Invalidate(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Saved, scope)
	return nil
}

func (s *Snapshots) InvalidateAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = map[string]*cache.CatalogSnapshot{}
	return nil
}

// Has reports whether scope has a stored snapshot.
func (s *Snapshots) Has(scope string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Saved[scope]
	return ok
}
