package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure ScanHistoryStore implements the interface.
var _ driven.ScanHistoryStore = (*ScanHistoryStore)(nil)

// ScanHistoryStore is an in-memory implementation of driven.ScanHistoryStore.
type ScanHistoryStore struct {
	mu      sync.RWMutex
	entries []domain.ScanHistoryEntry
	nextID  int64
}

// NewScanHistoryStore creates a new in-memory scan history store.
func NewScanHistoryStore() *ScanHistoryStore {
	return &ScanHistoryStore{nextID: 1}
}

// Append records one scan attempt.
func (s *ScanHistoryStore) Append(_ context.Context, entry *domain.ScanHistoryEntry) error {
	if entry == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, *entry)
	return nil
}

// List returns matching entries, most recent first.
func (s *ScanHistoryStore) List(_ context.Context, filter domain.ScanHistoryFilter) ([]domain.ScanHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.ScanHistoryEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter.SourceID != "" && e.SourceID != filter.SourceID {
			continue
		}
		if filter.Trigger != "" && e.Trigger != filter.Trigger {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if !filter.ScannedAfter.IsZero() && e.ScannedAt.Before(filter.ScannedAfter) {
			continue
		}
		if !filter.ScannedBefore.IsZero() && !e.ScannedAt.Before(filter.ScannedBefore) {
			continue
		}
		matched = append(matched, e)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.ScanHistoryEntry{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
