package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// SourceStore persists source configurations and their scan state.
type SourceStore interface {
	// Save stores or updates a source, idempotent on source identity.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by identity.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all sources, optionally only enabled ones, ordered by
	// identity.
	List(ctx context.Context, enabledOnly bool) ([]domain.Source, error)
}
