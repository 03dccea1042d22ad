package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages source configuration. Scan state on an existing
// source survives configuration upserts: only the scan engine transitions it.
type SourceService struct {
	store    driven.SourceStore
	audit    driven.AuditSink
	log      *zap.Logger
	validate *validator.Validate
}

// NewSourceService creates a source service. The audit sink is optional.
func NewSourceService(store driven.SourceStore, audit driven.AuditSink, log *zap.Logger) *SourceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SourceService{
		store:    store,
		audit:    audit,
		log:      log,
		validate: validator.New(),
	}
}

// Upsert validates and stores a source. Malformed configuration is rejected
// before any state change.
func (s *SourceService) Upsert(ctx context.Context, source domain.Source) (*domain.Source, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	if err := s.validateSource(source); err != nil {
		recordAudit(ctx, s.audit, "source.upsert", "rejected", err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.store.Get(ctx, source.ID)
	switch {
	case err == nil:
		// Carry scan state over; the upsert only replaces configuration.
		source.LastScanAt = existing.LastScanAt
		source.LastSuccessAt = existing.LastSuccessAt
		source.LastStatus = existing.LastStatus
		source.LastError = existing.LastError
		source.ConsecutiveFailures = existing.ConsecutiveFailures
		source.NextEligibleAt = existing.NextEligibleAt
		source.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		source.CreatedAt = now
	default:
		return nil, fmt.Errorf("get source: %w", err)
	}
	source.UpdatedAt = now

	if err := s.store.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	s.log.Info("source upserted",
		zap.String("source_id", source.ID),
		zap.String("kind", string(source.Kind)),
		zap.Bool("enabled", source.Enabled))
	recordAudit(ctx, s.audit, "source.upsert", "ok", source.ID)

	return &source, nil
}

// Get retrieves a source by identity.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	source, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source %q: %w", id, err)
	}
	return source, nil
}

// List returns configured sources, optionally only enabled ones.
func (s *SourceService) List(ctx context.Context, enabledOnly bool) ([]domain.Source, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	sources, err := s.store.List(ctx, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// validateSource rejects malformed configuration: struct-level constraints
// first, then the kind-specific payload requirements.
func (s *SourceService) validateSource(source domain.Source) error {
	if err := s.validate.Struct(source); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !source.Kind.Valid() {
		return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, source.Kind)
	}

	switch source.Kind {
	case domain.SourceKindInline:
		candidates, err := domain.DecodeCandidates(source.Inline)
		if err != nil {
			return fmt.Errorf("inline payload: %w", err)
		}
		if len(candidates) == 0 {
			return fmt.Errorf("%w: inline source has no postings", domain.ErrInvalidInput)
		}
	case domain.SourceKindRemote:
		if source.URL == "" {
			return fmt.Errorf("%w: remote source has no url", domain.ErrInvalidInput)
		}
	}
	return nil
}
