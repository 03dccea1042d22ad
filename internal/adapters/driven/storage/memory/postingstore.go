// Package memory provides in-memory implementations of the driven store
// ports. They mirror the sqlite adapter's semantics and back the unit tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure PostingStore implements the interface.
var _ driven.PostingStore = (*PostingStore)(nil)

// PostingStore is an in-memory implementation of driven.PostingStore.
type PostingStore struct {
	mu       sync.RWMutex
	postings map[string]domain.Posting
}

// NewPostingStore creates a new in-memory posting store.
func NewPostingStore() *PostingStore {
	return &PostingStore{
		postings: make(map[string]domain.Posting),
	}
}

// Upsert writes the postings under one lock, counting dedup-key collisions
// for newly-inserted identities.
func (s *PostingStore) Upsert(_ context.Context, postings []domain.Posting) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	duplicates := 0

	for _, p := range postings {
		if p.ID == "" {
			return updated, duplicates, domain.ErrInvalidInput
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = time.Now().UTC()
		}

		existing, exists := s.postings[p.ID]
		if exists {
			// Identity match: update in place, keep the insert-time hint.
			p.DuplicateHintCount = existing.DuplicateHintCount
			s.postings[p.ID] = p
			updated++
			continue
		}

		hints := 0
		if p.DedupKey != "" {
			for id, other := range s.postings {
				if id != p.ID && other.DedupKey == p.DedupKey {
					hints++
				}
			}
		}
		p.DuplicateHintCount = hints
		if hints > 0 {
			duplicates++
		}
		s.postings[p.ID] = p
		updated++
	}

	return updated, duplicates, nil
}

// Get retrieves a posting by identity.
func (s *PostingStore) Get(_ context.Context, id string) (*domain.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.postings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// List returns up to limit postings, most recently updated first.
func (s *PostingStore) List(_ context.Context, limit int) ([]domain.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Posting, 0, len(s.postings))
	for _, p := range s.postings {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
