package driving

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// ScanOrchestrator drives the per-source scan state machine.
type ScanOrchestrator interface {
	// ScanOne runs one scan attempt for the named source and returns its
	// history entry. Fetch failures are recorded in the entry, not returned;
	// an error is returned only for unknown sources or persistence failures.
	ScanOne(ctx context.Context, sourceID string, trigger domain.ScanTrigger, respectBackoff bool) (*domain.ScanHistoryEntry, error)

	// ScanBatch scans every (optionally only enabled) source sequentially.
	// Individual source failures are isolated and reported per source.
	ScanBatch(ctx context.Context, enabledOnly bool, trigger domain.ScanTrigger, respectBackoff bool) (*domain.BatchScanResult, error)

	// History lists scan attempts matching the filter, most recent first.
	History(ctx context.Context, filter domain.ScanHistoryFilter) ([]domain.ScanHistoryEntry, error)
}
