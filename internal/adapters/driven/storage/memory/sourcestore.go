package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
}

// NewSourceStore creates a new in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: make(map[string]domain.Source),
	}
}

// Save stores or updates a source.
func (s *SourceStore) Save(_ context.Context, source domain.Source) error {
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[source.ID] = source
	return nil
}

// Get retrieves a source by identity.
func (s *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &source, nil
}

// List returns sources ordered by identity.
func (s *SourceStore) List(_ context.Context, enabledOnly bool) ([]domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Source, 0, len(s.sources))
	for _, source := range s.sources {
		if enabledOnly && !source.Enabled {
			continue
		}
		result = append(result, source)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
