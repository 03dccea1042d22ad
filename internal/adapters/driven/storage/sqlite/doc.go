// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SourceStore: Source configuration and scan state persistence
//   - PostingStore: Canonical posting persistence with dedup hint tracking
//   - ScanHistoryStore: Append-only scan attempt log
//   - ProfileStore: Preference profile persistence
//   - RunStore: Recommendation run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.jobscout/data/jobscout.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
