package driving

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// RankService scores postings against a resume and preference profile.
type RankService interface {
	// Rank scores the request's postings, or the most recently updated
	// stored postings when none are supplied, and records the run. Supplied
	// postings are upserted as a side effect.
	Rank(ctx context.Context, req domain.RankRequest) (*domain.RankResult, error)

	// Runs lists recorded recommendation runs, most recent first.
	Runs(ctx context.Context, limit int) ([]domain.RecommendationRun, error)
}
