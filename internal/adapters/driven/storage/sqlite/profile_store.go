package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// profileStore implements driven.ProfileStore. Preference slices are stored
// as JSON text columns.
type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

// Save stores or updates a profile.
func (s *profileStore) Save(ctx context.Context, profile domain.PreferenceProfile) error {
	keywordsJSON, err := json.Marshal(profile.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}
	locationsJSON, err := json.Marshal(profile.Locations)
	if err != nil {
		return fmt.Errorf("marshalling locations: %w", err)
	}
	companiesJSON, err := json.Marshal(profile.Companies)
	if err != nil {
		return fmt.Errorf("marshalling companies: %w", err)
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, keywords, locations, companies,
			remote_only, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			keywords = excluded.keywords,
			locations = excluded.locations,
			companies = excluded.companies,
			remote_only = excluded.remote_only,
			updated_at = excluded.updated_at
	`, profile.ID, profile.Name, string(keywordsJSON), string(locationsJSON),
		string(companiesJSON), profile.RemoteOnly, profile.CreatedAt, profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by ID.
func (s *profileStore) Get(ctx context.Context, id string) (*domain.PreferenceProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, keywords, locations, companies, remote_only,
			created_at, updated_at
		FROM profiles WHERE id = ?
	`, id)

	profile, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// List returns all profiles ordered by ID.
func (s *profileStore) List(ctx context.Context) ([]domain.PreferenceProfile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, keywords, locations, companies, remote_only,
			created_at, updated_at
		FROM profiles ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.PreferenceProfile //nolint:prealloc // size unknown from query
	for rows.Next() {
		profile, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return profiles, nil
}

// Delete removes a profile. Deleting an unknown profile is a no-op.
func (s *profileStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// scanProfile scans one profile row via the given scan function.
func scanProfile(scan func(dest ...any) error) (*domain.PreferenceProfile, error) {
	var profile domain.PreferenceProfile
	var keywordsJSON, locationsJSON, companiesJSON sql.NullString

	if err := scan(&profile.ID, &profile.Name, &keywordsJSON, &locationsJSON,
		&companiesJSON, &profile.RemoteOnly, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	if err := unmarshalStringSlice(keywordsJSON, &profile.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshalling keywords: %w", err)
	}
	if err := unmarshalStringSlice(locationsJSON, &profile.Locations); err != nil {
		return nil, fmt.Errorf("unmarshalling locations: %w", err)
	}
	if err := unmarshalStringSlice(companiesJSON, &profile.Companies); err != nil {
		return nil, fmt.Errorf("unmarshalling companies: %w", err)
	}

	return &profile, nil
}

// unmarshalStringSlice decodes a JSON array column, tolerating NULL.
func unmarshalStringSlice(col sql.NullString, dest *[]string) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}
