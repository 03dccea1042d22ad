package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/jobscout/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.jobscout/data/jobscout.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".jobscout", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "jobscout.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// PostingStore returns a PostingStore interface backed by this store.
func (s *Store) PostingStore() driven.PostingStore {
	return &postingStore{store: s}
}

// ScanHistoryStore returns a ScanHistoryStore interface backed by this store.
func (s *Store) ScanHistoryStore() driven.ScanHistoryStore {
	return &scanHistoryStore{store: s}
}

// ProfileStore returns a ProfileStore interface backed by this store.
func (s *Store) ProfileStore() driven.ProfileStore {
	return &profileStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source with its scan state.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, kind, url, inline_payload, enabled,
			last_scan_at, last_success_at, last_status, last_error,
			consecutive_failures, next_eligible_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			url = excluded.url,
			inline_payload = excluded.inline_payload,
			enabled = excluded.enabled,
			last_scan_at = excluded.last_scan_at,
			last_success_at = excluded.last_success_at,
			last_status = excluded.last_status,
			last_error = excluded.last_error,
			consecutive_failures = excluded.consecutive_failures,
			next_eligible_at = excluded.next_eligible_at,
			updated_at = excluded.updated_at
	`, source.ID, source.Name, string(source.Kind), nullString(source.URL),
		nullString(string(source.Inline)), source.Enabled,
		nullTime(source.LastScanAt), nullTime(source.LastSuccessAt),
		nullString(string(source.LastStatus)), nullString(source.LastError),
		source.ConsecutiveFailures, nullTime(source.NextEligibleAt),
		source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, kind, url, inline_payload, enabled,
			last_scan_at, last_success_at, last_status, last_error,
			consecutive_failures, next_eligible_at, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	source, err := scanSource(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	return source, nil
}

// List returns sources ordered by ID, optionally only enabled ones.
func (s *sourceStore) List(ctx context.Context, enabledOnly bool) ([]domain.Source, error) {
	query := `
		SELECT id, name, kind, url, inline_payload, enabled,
			last_scan_at, last_success_at, last_status, last_error,
			consecutive_failures, next_eligible_at, created_at, updated_at
		FROM sources`
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY id"

	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// scanSource scans one source row via the given scan function.
func scanSource(scan func(dest ...any) error) (*domain.Source, error) {
	var source domain.Source
	var kind string
	var url, inline, lastStatus, lastError sql.NullString
	var lastScanAt, lastSuccessAt, nextEligibleAt sql.NullTime

	if err := scan(&source.ID, &source.Name, &kind, &url, &inline, &source.Enabled,
		&lastScanAt, &lastSuccessAt, &lastStatus, &lastError,
		&source.ConsecutiveFailures, &nextEligibleAt,
		&source.CreatedAt, &source.UpdatedAt); err != nil {
		return nil, err
	}

	source.Kind = domain.SourceKind(kind)
	source.URL = url.String
	if inline.Valid && inline.String != "" {
		source.Inline = json.RawMessage(inline.String)
	}
	source.LastStatus = domain.ScanStatus(lastStatus.String)
	source.LastError = lastError.String
	if lastScanAt.Valid {
		source.LastScanAt = lastScanAt.Time
	}
	if lastSuccessAt.Valid {
		source.LastSuccessAt = lastSuccessAt.Time
	}
	if nextEligibleAt.Valid {
		source.NextEligibleAt = nextEligibleAt.Time
	}

	return &source, nil
}

// ==================== Helper Functions ====================

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
