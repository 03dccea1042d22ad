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

// Ensure ProfileService implements the interface.
var _ driving.ProfileService = (*ProfileService)(nil)

// ProfileService manages preference profiles.
type ProfileService struct {
	store    driven.ProfileStore
	audit    driven.AuditSink
	log      *zap.Logger
	validate *validator.Validate
}

// NewProfileService creates a profile service. The audit sink is optional.
func NewProfileService(store driven.ProfileStore, audit driven.AuditSink, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{
		store:    store,
		audit:    audit,
		log:      log,
		validate: validator.New(),
	}
}

// Save validates and stores a profile, idempotent on profile identity.
func (s *ProfileService) Save(ctx context.Context, profile domain.PreferenceProfile) (*domain.PreferenceProfile, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	if err := s.validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	existing, err := s.store.Get(ctx, profile.ID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		profile.CreatedAt = now
	default:
		return nil, fmt.Errorf("get profile: %w", err)
	}
	profile.UpdatedAt = now

	if err := s.store.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.log.Info("profile saved", zap.String("profile_id", profile.ID))
	recordAudit(ctx, s.audit, "profile.save", "ok", profile.ID)

	return &profile, nil
}

// Get retrieves a profile by identity.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.PreferenceProfile, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	profile, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", id, err)
	}
	return profile, nil
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]domain.PreferenceProfile, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a profile. Deleting an unknown profile is a no-op.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	recordAudit(ctx, s.audit, "profile.delete", "ok", id)
	return nil
}
