package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// ProfileStore persists preference profiles.
type ProfileStore interface {
	// Save stores or updates a profile, idempotent on profile identity.
	Save(ctx context.Context, profile domain.PreferenceProfile) error

	// Get retrieves a profile by identity.
	Get(ctx context.Context, id string) (*domain.PreferenceProfile, error)

	// List returns all profiles ordered by identity.
	List(ctx context.Context) ([]domain.PreferenceProfile, error)

	// Delete removes a profile. Deleting an unknown profile is a no-op.
	Delete(ctx context.Context, id string) error
}
