package domain

import "time"

// ScanStatus is the terminal outcome of one scan attempt.
type ScanStatus string

const (
	// ScanStatusOK indicates the payload was fetched and ingested.
	ScanStatusOK ScanStatus = "ok"

	// ScanStatusError indicates the fetch, decode or persist step failed.
	ScanStatusError ScanStatus = "error"

	// ScanStatusSkipped indicates the attempt was short-circuited because
	// the source was inside its backoff window. A deliberate no-op, not an
	// error.
	ScanStatusSkipped ScanStatus = "skipped"
)

// ScanTrigger is the cause of a scan attempt.
type ScanTrigger string

const (
	// TriggerManual marks operator-initiated scans.
	TriggerManual ScanTrigger = "manual"

	// TriggerScheduled marks scans initiated by the scheduler. Scheduled
	// scans always respect backoff windows.
	TriggerScheduled ScanTrigger = "scheduled"
)

// ScanHistoryEntry is an immutable record of one scan attempt. One entry is
// appended per attempt regardless of outcome, so no attempt is silently lost.
type ScanHistoryEntry struct {
	// ID is the append-order identifier assigned by the history store.
	ID int64

	// SourceID identifies the scanned source.
	SourceID string

	// ScannedAt is when the attempt ran.
	ScannedAt time.Time

	// Trigger is the cause of the attempt.
	Trigger ScanTrigger

	// Status is the attempt outcome.
	Status ScanStatus

	// Fetched is the number of candidate postings decoded from the payload.
	Fetched int

	// Ingested is the number of postings upserted.
	Ingested int

	// Duplicates is the number of ingested postings that shared a dedup key
	// with an existing different-identity posting.
	Duplicates int

	// Attempt is the attempt number: 1 after a success, consecutive failure
	// count on errors, carried over on skips.
	Attempt int

	// BackoffSeconds is the backoff window applied after this attempt, or
	// the remaining window that caused a skip. Zero on success.
	BackoffSeconds int

	// NextEligibleAt is when the source becomes eligible again. Zero on
	// success.
	NextEligibleAt time.Time

	// BackoffRespected records whether the attempt honoured backoff windows.
	BackoffRespected bool

	// Error is the failure description for error outcomes.
	Error string
}

// ScanHistoryFilter narrows a history listing. Zero values mean no filter.
type ScanHistoryFilter struct {
	SourceID      string
	Trigger       ScanTrigger
	Status        ScanStatus
	ScannedAfter  time.Time
	ScannedBefore time.Time
	Limit         int
	Offset        int
}

// BatchScanResult aggregates the per-source outcomes of a batch scan.
// Individual source failures are isolated; the batch always completes.
type BatchScanResult struct {
	Requested       int
	Succeeded       int
	Failed          int
	Skipped         int
	TotalFetched    int
	TotalIngested   int
	TotalDuplicates int
	Results         []ScanHistoryEntry
}
