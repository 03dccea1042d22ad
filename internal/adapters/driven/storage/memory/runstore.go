package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.RecommendationRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Record appends a run summary.
func (s *RunStore) Record(_ context.Context, run domain.RecommendationRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// List returns up to limit runs, most recent first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RecommendationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RecommendationRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		result = append(result, s.runs[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
