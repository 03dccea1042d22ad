package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
	"github.com/custodia-labs/jobscout/internal/normalize"
)

const (
	// baseBackoffSeconds is the backoff window after the first failure.
	baseBackoffSeconds = 60

	// maxBackoffSeconds caps the exponential backoff.
	maxBackoffSeconds = 3600

	// defaultHistoryLimit bounds history listings when the caller passes none.
	defaultHistoryLimit = 50
)

// Ensure ScanOrchestrator implements the interface.
var _ driving.ScanOrchestrator = (*ScanOrchestrator)(nil)

// ScanOrchestrator drives the per-source scan state machine: it reads source
// state, short-circuits on backoff, fetches and decodes the payload, upserts
// postings and advances the backoff state, appending one history entry per
// attempt regardless of outcome.
type ScanOrchestrator struct {
	sources  driven.SourceStore
	postings driven.PostingStore
	history  driven.ScanHistoryStore
	fetcher  driven.PayloadFetcher
	audit    driven.AuditSink
	log      *zap.Logger

	// mu serialises the read-modify-write on source scan state and the
	// dedup-hint counting upsert. The payload fetch runs outside it.
	mu sync.Mutex

	now func() time.Time
}

// NewScanOrchestrator creates a scan orchestrator. The audit sink is optional.
func NewScanOrchestrator(
	sources driven.SourceStore,
	postings driven.PostingStore,
	history driven.ScanHistoryStore,
	fetcher driven.PayloadFetcher,
	audit driven.AuditSink,
	log *zap.Logger,
) *ScanOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScanOrchestrator{
		sources:  sources,
		postings: postings,
		history:  history,
		fetcher:  fetcher,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// backoffSeconds returns the capped exponential window for a failure count.
func backoffSeconds(consecutiveFailures int) int {
	if consecutiveFailures <= 0 {
		return 0
	}
	seconds := baseBackoffSeconds
	for i := 1; i < consecutiveFailures; i++ {
		seconds *= 2
		if seconds >= maxBackoffSeconds {
			return maxBackoffSeconds
		}
	}
	return seconds
}

// ScanOne runs one scan attempt for the named source. Fetch and decode
// failures become an error outcome in the returned history entry; only
// unknown sources and persistence failures surface as errors.
func (o *ScanOrchestrator) ScanOne(
	ctx context.Context,
	sourceID string,
	trigger domain.ScanTrigger,
	respectBackoff bool,
) (*domain.ScanHistoryEntry, error) {
	o.mu.Lock()
	src, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("get source %q: %w", sourceID, err)
	}

	startedAt := o.now().UTC()
	if respectBackoff && src.InBackoff(startedAt) {
		entry, err := o.recordSkip(ctx, src, trigger, startedAt)
		o.mu.Unlock()
		if err != nil {
			return nil, err
		}
		recordAudit(ctx, o.audit, "scan.one", string(domain.ScanStatusSkipped), sourceID)
		return entry, nil
	}
	fetchSource := *src
	o.mu.Unlock()

	// The fetch may block for up to the fetch timeout; it must not hold the
	// serialisation lock.
	payload, fetchErr := o.fetcher.Fetch(ctx, fetchSource)

	var candidates []domain.RawPosting
	if fetchErr == nil {
		candidates, fetchErr = domain.DecodeCandidates(payload)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// Re-read: another attempt may have transitioned the state while the
	// fetch was in flight.
	src, err = o.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source %q: %w", sourceID, err)
	}

	entry := &domain.ScanHistoryEntry{
		SourceID:         sourceID,
		ScannedAt:        startedAt,
		Trigger:          trigger,
		BackoffRespected: respectBackoff,
	}

	if fetchErr != nil {
		o.applyFailure(src, entry, startedAt, fetchErr)
	} else {
		mapped := o.mapCandidates(src.ID, candidates, startedAt)
		ingested, duplicates, upsertErr := o.postings.Upsert(ctx, mapped)
		if upsertErr != nil {
			return nil, fmt.Errorf("upsert scanned postings: %w", upsertErr)
		}
		o.applySuccess(src, entry, startedAt)
		entry.Fetched = len(candidates)
		entry.Ingested = ingested
		entry.Duplicates = duplicates
	}

	if err := o.sources.Save(ctx, *src); err != nil {
		return nil, fmt.Errorf("save source state: %w", err)
	}
	if err := o.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append scan history: %w", err)
	}

	o.log.Info("scan attempt finished",
		zap.String("source_id", sourceID),
		zap.String("status", string(entry.Status)),
		zap.String("trigger", string(trigger)),
		zap.Int("fetched", entry.Fetched),
		zap.Int("ingested", entry.Ingested),
		zap.Int("duplicates", entry.Duplicates),
		zap.Int("attempt", entry.Attempt))
	recordAudit(ctx, o.audit, "scan.one", string(entry.Status), sourceID)

	return entry, nil
}

// ScanBatch scans sources sequentially, isolating individual failures and
// aggregating counts. Scheduled batches always respect backoff windows.
func (o *ScanOrchestrator) ScanBatch(
	ctx context.Context,
	enabledOnly bool,
	trigger domain.ScanTrigger,
	respectBackoff bool,
) (*domain.BatchScanResult, error) {
	sources, err := o.sources.List(ctx, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	result := &domain.BatchScanResult{Requested: len(sources)}
	for _, src := range sources {
		entry, err := o.ScanOne(ctx, src.ID, trigger, respectBackoff)
		if err != nil {
			// Isolation: one source's persistence failure must not abort
			// the batch. Synthesise an error entry for the report.
			o.log.Warn("scan failed for source",
				zap.String("source_id", src.ID),
				zap.Error(err))
			entry = &domain.ScanHistoryEntry{
				SourceID:  src.ID,
				ScannedAt: o.now().UTC(),
				Trigger:   trigger,
				Status:    domain.ScanStatusError,
				Error:     err.Error(),
			}
		}

		switch entry.Status {
		case domain.ScanStatusOK:
			result.Succeeded++
		case domain.ScanStatusError:
			result.Failed++
		case domain.ScanStatusSkipped:
			result.Skipped++
		}
		result.TotalFetched += entry.Fetched
		result.TotalIngested += entry.Ingested
		result.TotalDuplicates += entry.Duplicates
		result.Results = append(result.Results, *entry)
	}

	o.log.Info("batch scan finished",
		zap.String("trigger", string(trigger)),
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("ingested", result.TotalIngested))
	recordAudit(ctx, o.audit, "scan.batch", "ok",
		fmt.Sprintf("requested=%d ok=%d failed=%d skipped=%d",
			result.Requested, result.Succeeded, result.Failed, result.Skipped))

	return result, nil
}

// History lists scan attempts matching the filter, most recent first.
func (o *ScanOrchestrator) History(ctx context.Context, filter domain.ScanHistoryFilter) ([]domain.ScanHistoryEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	entries, err := o.history.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list scan history: %w", err)
	}
	return entries, nil
}

// recordSkip appends the history entry for a backoff short-circuit. Attempt
// number and next-eligible time carry over unchanged from the prior failure.
func (o *ScanOrchestrator) recordSkip(
	ctx context.Context,
	src *domain.Source,
	trigger domain.ScanTrigger,
	at time.Time,
) (*domain.ScanHistoryEntry, error) {
	entry := &domain.ScanHistoryEntry{
		SourceID:         src.ID,
		ScannedAt:        at,
		Trigger:          trigger,
		Status:           domain.ScanStatusSkipped,
		Attempt:          src.ConsecutiveFailures,
		BackoffSeconds:   backoffSeconds(src.ConsecutiveFailures),
		NextEligibleAt:   src.NextEligibleAt,
		BackoffRespected: true,
	}

	src.LastScanAt = at
	src.LastStatus = domain.ScanStatusSkipped
	src.UpdatedAt = at

	if err := o.sources.Save(ctx, *src); err != nil {
		return nil, fmt.Errorf("save source state: %w", err)
	}
	if err := o.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append scan history: %w", err)
	}

	o.log.Debug("scan skipped in backoff",
		zap.String("source_id", src.ID),
		zap.Time("next_eligible_at", src.NextEligibleAt))
	return entry, nil
}

// applySuccess transitions the source out of backoff.
func (o *ScanOrchestrator) applySuccess(src *domain.Source, entry *domain.ScanHistoryEntry, at time.Time) {
	src.ConsecutiveFailures = 0
	src.LastScanAt = at
	src.LastSuccessAt = at
	src.LastStatus = domain.ScanStatusOK
	src.LastError = ""
	src.NextEligibleAt = time.Time{}
	src.UpdatedAt = at

	entry.Status = domain.ScanStatusOK
	entry.Attempt = 1
}

// applyFailure advances the backoff state machine after a failed attempt.
func (o *ScanOrchestrator) applyFailure(src *domain.Source, entry *domain.ScanHistoryEntry, at time.Time, cause error) {
	src.ConsecutiveFailures++
	backoff := backoffSeconds(src.ConsecutiveFailures)
	src.LastScanAt = at
	src.LastStatus = domain.ScanStatusError
	src.LastError = cause.Error()
	src.NextEligibleAt = at.Add(time.Duration(backoff) * time.Second)
	src.UpdatedAt = at

	entry.Status = domain.ScanStatusError
	entry.Attempt = src.ConsecutiveFailures
	entry.BackoffSeconds = backoff
	entry.NextEligibleAt = src.NextEligibleAt
	entry.Error = cause.Error()
}

// mapCandidates assigns identities and fingerprints to decoded candidates.
// Sources with stable external identities re-ingest in place; everything
// else gets a fresh identity per scan and relies on dedup hints downstream.
func (o *ScanOrchestrator) mapCandidates(sourceID string, candidates []domain.RawPosting, at time.Time) []domain.Posting {
	scanMarker := strconv.FormatInt(at.UnixNano(), 10)

	postings := make([]domain.Posting, 0, len(candidates))
	for i, c := range candidates {
		externalID := c.StableExternalID()

		var id string
		if externalID != "" {
			id = normalize.ExternalPostingID(sourceID, externalID)
		} else {
			id = normalize.IngestedPostingID(
				sourceID, c.Title, c.Description, c.Company, c.Location, c.ApplyURL,
				i, scanMarker)
		}

		postings = append(postings, domain.Posting{
			ID:          id,
			Title:       c.Title,
			Description: c.Description,
			Company:     c.Company,
			Location:    c.Location,
			ApplyURL:    c.ApplyURL,
			SourceID:    sourceID,
			ExternalID:  externalID,
			DedupKey:    normalize.DedupKey(c.Title, c.Company, c.Location, c.ApplyURL),
			UpdatedAt:   at,
		})
	}
	return postings
}
