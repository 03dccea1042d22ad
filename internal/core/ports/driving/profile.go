package driving

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// ProfileService manages preference profiles.
type ProfileService interface {
	// Save validates and stores a profile, idempotent on profile identity.
	Save(ctx context.Context, profile domain.PreferenceProfile) (*domain.PreferenceProfile, error)

	// Get retrieves a profile by identity.
	Get(ctx context.Context, id string) (*domain.PreferenceProfile, error)

	// List returns all profiles.
	List(ctx context.Context) ([]domain.PreferenceProfile, error)

	// Delete removes a profile. Deleting an unknown profile is a no-op.
	Delete(ctx context.Context, id string) error
}
