// Package audit implements the audit sink port by logging structured events.
// The engine reports outcome strings here; durable audit storage belongs to
// an external collaborator.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Ensure ZapSink implements the interface.
var _ driven.AuditSink = (*ZapSink)(nil)

// ZapSink records audit events as structured log lines.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink creates a sink writing through the given logger.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log.Named("audit")}
}

// Record logs the event. Never fails, never blocks the caller.
func (s *ZapSink) Record(_ context.Context, event domain.AuditEvent) {
	s.log.Info(event.Action,
		zap.String("outcome", event.Outcome),
		zap.String("detail", event.Detail),
		zap.Time("at", event.At))
}
