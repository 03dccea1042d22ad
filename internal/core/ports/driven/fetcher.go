package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// PayloadFetcher retrieves the raw payload for a source. Dispatch over the
// source kind (inline static data vs. remote URL) happens behind this single
// interface so the scan engine never inspects the variant itself.
//
// Fetching may block on the network and must honour the context; it runs
// outside the scan engine's serialisation boundary.
type PayloadFetcher interface {
	Fetch(ctx context.Context, source domain.Source) ([]byte, error)
}
