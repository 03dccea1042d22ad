package domain

import "time"

// Preferences is the resolved bundle of ranking preferences applied to a
// single rank call: explicit request values merged over the caller's stored
// profile, falling back to "no preference".
type Preferences struct {
	Keywords   []string
	Locations  []string
	Companies  []string
	RemoteOnly bool
}

// ScoreBreakdown exposes the independent scoring signals for one posting so
// results are explainable and individually testable.
type ScoreBreakdown struct {
	TitleOverlap       float64 `json:"title_overlap"`
	DescriptionOverlap float64 `json:"description_overlap"`
	KeywordOverlap     float64 `json:"keyword_overlap"`
	PreferenceBonus    float64 `json:"preference_bonus"`
	FreshnessBonus     float64 `json:"freshness_bonus"`
	DuplicatePenalty   float64 `json:"duplicate_penalty"`
}

// RankedRecommendation is one scored posting in a rank result.
type RankedRecommendation struct {
	PostingID    string         `json:"id"`
	Title        string         `json:"title"`
	Company      string         `json:"company,omitempty"`
	Location     string         `json:"location,omitempty"`
	ApplyURL     string         `json:"apply_url,omitempty"`
	Score        float64        `json:"score"`
	MatchedTerms []string       `json:"matched_terms"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
}

// RecommendationRun summarises one rank invocation for history.
type RecommendationRun struct {
	// ID is the run identifier.
	ID string

	// GeneratedAt is when the run completed.
	GeneratedAt time.Time

	// RecommendationCount is the number of postings scored.
	RecommendationCount int

	// ResumeLength is the length of the resume text, in characters.
	ResumeLength int

	// PostingsSource records where the scored postings came from:
	// "request" or "stored".
	PostingsSource string
}

// Postings-source values for RecommendationRun and RankResult.
const (
	PostingsSourceRequest = "request"
	PostingsSourceStored  = "stored"
)

// RankRequest carries the inputs of a rank call. Postings may be empty, in
// which case the most recently updated stored postings are scored. Explicit
// preference fields override the profile's values field-by-field.
type RankRequest struct {
	ResumeText string
	Postings   []Posting
	ProfileID  string

	Keywords  []string
	Locations []string
	Companies []string

	// RemoteOnly overrides the profile's remote-only flag when non-nil.
	RemoteOnly *bool
}

// RankResult is the ordered outcome of a rank call.
type RankResult struct {
	RunID            string
	GeneratedAt      time.Time
	PostingsSource   string
	AppliedProfileID string
	Recommendations  []RankedRecommendation
}
