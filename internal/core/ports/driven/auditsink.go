package driven

import (
	"context"

	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// AuditSink receives outcome reports for mutating operations and scan
// attempts. Implementations must be non-blocking from the caller's point of
// view; recording failures are swallowed, never propagated.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
