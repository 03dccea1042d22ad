package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// RunStore records recommendation runs for history.
type RunStore interface {
	// Record appends a run summary.
	Record(ctx context.Context, run domain.RecommendationRun) error

	// List returns up to limit runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.RecommendationRun, error)
}
