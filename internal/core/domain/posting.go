package domain

import "time"

// Posting is a canonical job listing.
// Postings are created by scan ingestion or direct upsert and are never
// deleted by the engine; retention is an external concern.
type Posting struct {
	// ID is the stable identity of the posting. For ingested postings it is
	// either "{source_id}::{external_id}" or a digest-derived identifier.
	ID string

	// Title is the job title.
	Title string

	// Description is the job description text.
	Description string

	// Company is the hiring company, if known.
	Company string

	// Location is the advertised location, if known.
	Location string

	// ApplyURL is the application link, if known.
	ApplyURL string

	// SourceID identifies the source the posting was ingested from.
	// Empty for directly upserted postings.
	SourceID string

	// ExternalID is the source-native identity, if the source provides one.
	ExternalID string

	// DedupKey is the derived fingerprint over normalised
	// title/company/location/apply-URL. Never user-supplied for ingested
	// postings.
	DedupKey string

	// DuplicateHintCount is the number of other stored postings that shared
	// this posting's dedup key when it was inserted. A probabilistic hint,
	// not an identity: duplicates are surfaced, never merged.
	DuplicateHintCount int

	// UpdatedAt is when the posting was last written.
	UpdatedAt time.Time
}

// RawPosting is a candidate posting as decoded from a source payload,
// before identity assignment and fingerprinting. External payload shapes
// (object with a postings list, or a bare list) are normalised into this
// type at the boundary.
type RawPosting struct {
	ExternalID  string `json:"external_id,omitempty"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	ApplyURL    string `json:"apply_url,omitempty"`
}

// StableExternalID returns the source-native identity, preferring the
// explicit external_id field over a bare id. Empty when the source cannot
// guarantee a stable identity.
func (r RawPosting) StableExternalID() string {
	if r.ExternalID != "" {
		return r.ExternalID
	}
	return r.ID
}
