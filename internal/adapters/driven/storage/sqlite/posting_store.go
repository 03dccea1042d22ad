package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// postingStore implements driven.PostingStore.
type postingStore struct {
	store *Store
}

var _ driven.PostingStore = (*postingStore)(nil)

// Upsert writes the postings in one transaction. A posting whose identity
// already exists is updated in place and keeps its duplicate hint count; a
// new posting records how many existing different-identity rows shared its
// dedup key at insert time.
func (s *postingStore) Upsert(ctx context.Context, postings []domain.Posting) (int, int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var updated, duplicates int
	for _, p := range postings {
		var existingHints int
		err := tx.QueryRowContext(ctx,
			"SELECT duplicate_hint_count FROM postings WHERE id = ?", p.ID,
		).Scan(&existingHints)

		switch {
		case err == sql.ErrNoRows:
			// New identity: count dedup-key collisions against other rows.
			var hints int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM postings WHERE dedup_key = ? AND id != ?",
				p.DedupKey, p.ID,
			).Scan(&hints); err != nil {
				return 0, 0, fmt.Errorf("counting dedup collisions: %w", err)
			}
			if hints > 0 {
				duplicates++
			}
			p.DuplicateHintCount = hints

		case err != nil:
			return 0, 0, fmt.Errorf("checking posting: %w", err)

		default:
			p.DuplicateHintCount = existingHints
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO postings (id, title, description, company, location,
				apply_url, source_id, external_id, dedup_key,
				duplicate_hint_count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				company = excluded.company,
				location = excluded.location,
				apply_url = excluded.apply_url,
				source_id = excluded.source_id,
				external_id = excluded.external_id,
				dedup_key = excluded.dedup_key,
				duplicate_hint_count = excluded.duplicate_hint_count,
				updated_at = excluded.updated_at
		`, p.ID, p.Title, nullString(p.Description), nullString(p.Company),
			nullString(p.Location), nullString(p.ApplyURL),
			nullString(p.SourceID), nullString(p.ExternalID),
			p.DedupKey, p.DuplicateHintCount, p.UpdatedAt.UTC()); err != nil {
			return 0, 0, fmt.Errorf("saving posting: %w", err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, duplicates, nil
}

// Get retrieves a posting by identity.
func (s *postingStore) Get(ctx context.Context, id string) (*domain.Posting, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, description, company, location, apply_url,
			source_id, external_id, dedup_key, duplicate_hint_count, updated_at
		FROM postings WHERE id = ?
	`, id)

	posting, err := scanPosting(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning posting: %w", err)
	}
	return posting, nil
}

// List returns up to limit postings, most recently updated first, ties
// broken by identity.
func (s *postingStore) List(ctx context.Context, limit int) ([]domain.Posting, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, description, company, location, apply_url,
			source_id, external_id, dedup_key, duplicate_hint_count, updated_at
		FROM postings
		ORDER BY updated_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var postings []domain.Posting //nolint:prealloc // size unknown from query
	for rows.Next() {
		posting, err := scanPosting(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		postings = append(postings, *posting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}

	return postings, nil
}

// scanPosting scans one posting row via the given scan function.
func scanPosting(scan func(dest ...any) error) (*domain.Posting, error) {
	var p domain.Posting
	var description, company, location, applyURL, sourceID, externalID sql.NullString

	if err := scan(&p.ID, &p.Title, &description, &company, &location, &applyURL,
		&sourceID, &externalID, &p.DedupKey, &p.DuplicateHintCount, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Company = company.String
	p.Location = location.String
	p.ApplyURL = applyURL.String
	p.SourceID = sourceID.String
	p.ExternalID = externalID.String

	return &p, nil
}
