package domain

import (
	"encoding/json"
	"time"
)

// SourceKind identifies how a source's payload is obtained.
type SourceKind string

const (
	// SourceKindInline serves a static payload embedded in the source
	// configuration.
	SourceKindInline SourceKind = "inline"

	// SourceKindRemote fetches a JSON payload from a remote URL.
	SourceKindRemote SourceKind = "remote"
)

// Valid reports whether the kind is a known source kind.
func (k SourceKind) Valid() bool {
	return k == SourceKindInline || k == SourceKindRemote
}

// Source is a configured ingestion endpoint together with its scan state.
// Scan state fields are mutated exclusively by the scan engine's state
// transition after each attempt.
type Source struct {
	// ID is the unique source identity.
	ID string `validate:"required"`

	// Name is the human-readable name for this source.
	Name string `validate:"required"`

	// Kind selects the payload variant: inline static data or remote URL.
	Kind SourceKind `validate:"required"`

	// URL is the remote payload location. Required for remote sources.
	URL string `validate:"omitempty,url"`

	// Inline is the static payload for inline sources, kept raw so that the
	// same boundary decoding applies to inline and remote payloads alike.
	Inline json.RawMessage

	// Enabled controls whether batch scans include this source.
	Enabled bool

	// LastScanAt is when the source was last scanned (any outcome).
	LastScanAt time.Time

	// LastSuccessAt is when the source last scanned successfully.
	LastSuccessAt time.Time

	// LastStatus is the outcome of the most recent attempt.
	LastStatus ScanStatus

	// LastError is the failure description from the most recent error
	// outcome. Cleared on success.
	LastError string

	// ConsecutiveFailures counts failed scans since the last success.
	// Resets to zero only on a successful scan.
	ConsecutiveFailures int

	// NextEligibleAt is the end of the current backoff window. Set only
	// while backing off; zero otherwise.
	NextEligibleAt time.Time

	// CreatedAt is when the source was first configured.
	CreatedAt time.Time

	// UpdatedAt is when the configuration or scan state last changed.
	UpdatedAt time.Time
}

// InBackoff reports whether the source is inside a backoff window at t.
func (s *Source) InBackoff(t time.Time) bool {
	return !s.NextEligibleAt.IsZero() && s.NextEligibleAt.After(t)
}
