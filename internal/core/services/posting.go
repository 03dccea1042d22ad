// Package services implements the core engine behind the driving ports:
// posting persistence, source management, the scan state machine, ranking
// and preference profiles.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
	"github.com/custodia-labs/jobscout/internal/normalize"
)

// defaultListLimit bounds posting listings when the caller passes none.
const defaultListLimit = 50

// Ensure PostingService implements the interface.
var _ driving.PostingService = (*PostingService)(nil)

// PostingService provides direct posting persistence.
type PostingService struct {
	store driven.PostingStore
	audit driven.AuditSink
	log   *zap.Logger
}

// NewPostingService creates a posting service. The audit sink is optional.
func NewPostingService(store driven.PostingStore, audit driven.AuditSink, log *zap.Logger) *PostingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostingService{store: store, audit: audit, log: log}
}

// Upsert validates and writes postings. Dedup keys are always derived here;
// a caller-supplied key is discarded so fingerprints stay canonical.
func (s *PostingService) Upsert(ctx context.Context, postings []domain.Posting) (int, int, error) {
	if s.store == nil {
		return 0, 0, domain.ErrNotImplemented
	}

	now := time.Now().UTC()
	prepared := make([]domain.Posting, 0, len(postings))
	for i, p := range postings {
		if p.ID == "" {
			return 0, 0, fmt.Errorf("%w: posting %d has no id", domain.ErrInvalidInput, i)
		}
		if p.Title == "" {
			return 0, 0, fmt.Errorf("%w: posting %q has no title", domain.ErrInvalidInput, p.ID)
		}
		p.DedupKey = normalize.DedupKey(p.Title, p.Company, p.Location, p.ApplyURL)
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		prepared = append(prepared, p)
	}

	updated, duplicates, err := s.store.Upsert(ctx, prepared)
	if err != nil {
		return 0, 0, fmt.Errorf("upsert postings: %w", err)
	}

	s.log.Debug("postings upserted",
		zap.Int("updated", updated),
		zap.Int("duplicates", duplicates))
	recordAudit(ctx, s.audit, "postings.upsert", "ok",
		fmt.Sprintf("updated=%d duplicates=%d", updated, duplicates))

	return updated, duplicates, nil
}

// List returns up to limit postings, most recently updated first.
func (s *PostingService) List(ctx context.Context, limit int) ([]domain.Posting, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	postings, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	return postings, nil
}

// recordAudit reports an outcome to the sink when one is configured.
// Auditing is best effort and never affects the operation's result.
func recordAudit(ctx context.Context, sink driven.AuditSink, action, outcome, detail string) {
	if sink == nil {
		return
	}
	sink.Record(ctx, domain.AuditEvent{
		Action:  action,
		Outcome: outcome,
		Detail:  detail,
		At:      time.Now().UTC(),
	})
}
