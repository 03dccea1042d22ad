package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore is an in-memory implementation of driven.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.PreferenceProfile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]domain.PreferenceProfile),
	}
}

// Save stores or updates a profile.
func (s *ProfileStore) Save(_ context.Context, profile domain.PreferenceProfile) error {
	if profile.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
	return nil
}

// Get retrieves a profile by identity.
func (s *ProfileStore) Get(_ context.Context, id string) (*domain.PreferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

// List returns profiles ordered by identity.
func (s *ProfileStore) List(_ context.Context) ([]domain.PreferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.PreferenceProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a profile.
func (s *ProfileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}
