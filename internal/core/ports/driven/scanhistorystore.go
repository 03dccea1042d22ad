package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// ScanHistoryStore is the append-only log of scan attempts.
type ScanHistoryStore interface {
	// Append records one scan attempt and assigns its entry ID.
	Append(ctx context.Context, entry *domain.ScanHistoryEntry) error

	// List returns entries matching the filter, most recent first.
	List(ctx context.Context, filter domain.ScanHistoryFilter) ([]domain.ScanHistoryEntry, error)
}
