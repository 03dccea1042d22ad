package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// scanHistoryStore implements driven.ScanHistoryStore.
type scanHistoryStore struct {
	store *Store
}

var _ driven.ScanHistoryStore = (*scanHistoryStore)(nil)

// Append records one scan attempt and assigns its entry ID.
func (s *scanHistoryStore) Append(ctx context.Context, entry *domain.ScanHistoryEntry) error {
	result, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scan_history (source_id, scanned_at, scan_trigger, status,
			fetched, ingested, duplicates, attempt, backoff_seconds,
			next_eligible_at, backoff_respected, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.SourceID, entry.ScannedAt.UTC(), string(entry.Trigger), string(entry.Status),
		entry.Fetched, entry.Ingested, entry.Duplicates, entry.Attempt,
		entry.BackoffSeconds, nullTime(entry.NextEligibleAt),
		entry.BackoffRespected, nullString(entry.Error))
	if err != nil {
		return fmt.Errorf("appending scan history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting history entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns entries matching the filter, most recent first.
func (s *scanHistoryStore) List(ctx context.Context, filter domain.ScanHistoryFilter) ([]domain.ScanHistoryEntry, error) {
	var conds []string
	var args []any

	if filter.SourceID != "" {
		conds = append(conds, "source_id = ?")
		args = append(args, filter.SourceID)
	}
	if filter.Trigger != "" {
		conds = append(conds, "scan_trigger = ?")
		args = append(args, string(filter.Trigger))
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.ScannedAfter.IsZero() {
		conds = append(conds, "scanned_at >= ?")
		args = append(args, filter.ScannedAfter.UTC())
	}
	if !filter.ScannedBefore.IsZero() {
		conds = append(conds, "scanned_at < ?")
		args = append(args, filter.ScannedBefore.UTC())
	}

	query := `
		SELECT id, source_id, scanned_at, scan_trigger, status, fetched,
			ingested, duplicates, attempt, backoff_seconds, next_eligible_at,
			backoff_respected, error
		FROM scan_history`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scanned_at DESC, id DESC LIMIT ? OFFSET ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scan history: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScanHistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.ScanHistoryEntry
		var trigger, status string
		var nextEligibleAt sql.NullTime
		var errText sql.NullString

		if err := rows.Scan(&e.ID, &e.SourceID, &e.ScannedAt, &trigger, &status,
			&e.Fetched, &e.Ingested, &e.Duplicates, &e.Attempt, &e.BackoffSeconds,
			&nextEligibleAt, &e.BackoffRespected, &errText); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}

		e.Trigger = domain.ScanTrigger(trigger)
		e.Status = domain.ScanStatus(status)
		e.Error = errText.String
		if nextEligibleAt.Valid {
			e.NextEligibleAt = nextEligibleAt.Time
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan history: %w", err)
	}

	return entries, nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Record appends a run summary.
func (s *runStore) Record(ctx context.Context, run domain.RecommendationRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO recommendation_runs
			(id, generated_at, recommendation_count, resume_length, postings_source)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.GeneratedAt.UTC(), run.RecommendationCount,
		run.ResumeLength, run.PostingsSource)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// List returns up to limit runs, most recent first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RecommendationRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, generated_at, recommendation_count, resume_length, postings_source
		FROM recommendation_runs
		ORDER BY generated_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RecommendationRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.RecommendationRun
		if err := rows.Scan(&run.ID, &run.GeneratedAt, &run.RecommendationCount,
			&run.ResumeLength, &run.PostingsSource); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}
