package driving

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// SourceService manages source configuration.
type SourceService interface {
	// Upsert validates and stores a source, idempotent on source identity.
	// Malformed configuration is rejected before any state change.
	Upsert(ctx context.Context, source domain.Source) (*domain.Source, error)

	// Get retrieves a source by identity.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns configured sources, optionally only enabled ones.
	List(ctx context.Context, enabledOnly bool) ([]domain.Source, error)
}
