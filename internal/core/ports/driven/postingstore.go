package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// PostingStore persists canonical postings.
//
// Upsert is idempotent on posting identity and maintains duplicate hints:
// a newly-inserted posting whose dedup key matches an existing posting with
// a different identity records the number of such collisions in its
// DuplicateHintCount. Colliding rows are never merged or dropped.
type PostingStore interface {
	// Upsert writes the postings in one transaction. Returns the number of
	// postings written and the number of new inserts that collided with an
	// existing different-identity dedup key.
	Upsert(ctx context.Context, postings []domain.Posting) (updated, duplicates int, err error)

	// Get retrieves a posting by identity.
	Get(ctx context.Context, id string) (*domain.Posting, error)

	// List returns up to limit postings ordered by most-recently-updated.
	List(ctx context.Context, limit int) ([]domain.Posting, error)
}
