package driving

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// PostingService exposes direct posting persistence.
type PostingService interface {
	// Upsert writes postings idempotently by identity, deriving dedup keys
	// for any posting that lacks one. Returns the written count and the
	// number of new dedup-key collisions.
	Upsert(ctx context.Context, postings []domain.Posting) (updated, duplicates int, err error)

	// List returns up to limit postings ordered by most-recently-updated.
	List(ctx context.Context, limit int) ([]domain.Posting, error)
}
