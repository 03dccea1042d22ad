package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jobscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jobscout/internal/core/domain"
)

// fetcherFunc adapts a function to the payload fetcher port.
type fetcherFunc func(ctx context.Context, source domain.Source) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, source domain.Source) ([]byte, error) {
	return f(ctx, source)
}

// scanFixture bundles an orchestrator with its stores and a settable clock.
type scanFixture struct {
	orch     *ScanOrchestrator
	sources  *memory.SourceStore
	postings *memory.PostingStore
	history  *memory.ScanHistoryStore
	clock    time.Time
}

func newScanFixture(t *testing.T, fetcher fetcherFunc) *scanFixture {
	t.Helper()

	f := &scanFixture{
		sources:  memory.NewSourceStore(),
		postings: memory.NewPostingStore(),
		history:  memory.NewScanHistoryStore(),
		clock:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.orch = NewScanOrchestrator(f.sources, f.postings, f.history, fetcher, nil, nil)
	f.orch.now = func() time.Time { return f.clock }
	return f
}

func (f *scanFixture) addSource(t *testing.T, id string, enabled bool) {
	t.Helper()
	require.NoError(t, f.sources.Save(context.Background(), domain.Source{
		ID:      id,
		Name:    id,
		Kind:    domain.SourceKindRemote,
		URL:     "https://" + id + ".example.com/feed.json",
		Enabled: enabled,
	}))
}

func (f *scanFixture) source(t *testing.T, id string) domain.Source {
	t.Helper()
	src, err := f.sources.Get(context.Background(), id)
	require.NoError(t, err)
	return *src
}

const twoPostingPayload = `{"postings": [
	{"external_id": "j1", "title": "Go Engineer", "company": "Acme"},
	{"external_id": "j2", "title": "SRE", "company": "Acme"}
]}`

func TestBackoffSeconds(t *testing.T) {
	tests := []struct {
		failures int
		want     int
	}{
		{0, 0},
		{1, 60},
		{2, 120},
		{3, 240},
		{4, 480},
		{6, 1920},
		{7, 3600},
		{100, 3600},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoffSeconds(tt.failures), "failures=%d", tt.failures)
	}
}

func TestScanOneSuccess(t *testing.T) {
	fetched := 0
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		fetched++
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "src", true)

	entry, err := f.orch.ScanOne(context.Background(), "src", domain.TriggerManual, true)
	require.NoError(t, err)

	assert.Equal(t, 1, fetched)
	assert.Equal(t, domain.ScanStatusOK, entry.Status)
	assert.Equal(t, 2, entry.Fetched)
	assert.Equal(t, 2, entry.Ingested)
	assert.Equal(t, 0, entry.Duplicates)
	assert.Equal(t, 1, entry.Attempt)
	assert.Zero(t, entry.BackoffSeconds)
	assert.True(t, entry.NextEligibleAt.IsZero())

	src := f.source(t, "src")
	assert.Equal(t, domain.ScanStatusOK, src.LastStatus)
	assert.Equal(t, f.clock, src.LastScanAt)
	assert.Equal(t, f.clock, src.LastSuccessAt)
	assert.Zero(t, src.ConsecutiveFailures)

	// Identity derives from the stable external id.
	posting, err := f.postings.Get(context.Background(), "src::j1")
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", posting.Title)
	assert.Equal(t, "j1", posting.ExternalID)
	assert.NotEmpty(t, posting.DedupKey)

	history, err := f.history.List(context.Background(), domain.ScanHistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestScanOneFailureAdvancesBackoff(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	wantBackoffs := []int{60, 120, 240}
	for i, want := range wantBackoffs {
		entry, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, false)
		require.NoError(t, err)

		assert.Equal(t, domain.ScanStatusError, entry.Status)
		assert.Equal(t, i+1, entry.Attempt)
		assert.Equal(t, want, entry.BackoffSeconds)
		assert.Equal(t, f.clock.Add(time.Duration(want)*time.Second), entry.NextEligibleAt)
		assert.Contains(t, entry.Error, "connection refused")

		src := f.source(t, "src")
		assert.Equal(t, i+1, src.ConsecutiveFailures)
		assert.Equal(t, entry.NextEligibleAt, src.NextEligibleAt)
	}

	// One history row per attempt.
	history, err := f.history.List(ctx, domain.ScanHistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestScanOneSkipsDuringBackoff(t *testing.T) {
	failing := true
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		if failing {
			return nil, errors.New("boom")
		}
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	_, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)
	before := f.source(t, "src")

	// Still inside the 60s window.
	f.clock = f.clock.Add(30 * time.Second)
	entry, err := f.orch.ScanOne(ctx, "src", domain.TriggerScheduled, true)
	require.NoError(t, err)

	assert.Equal(t, domain.ScanStatusSkipped, entry.Status)
	assert.Equal(t, 1, entry.Attempt)
	assert.Equal(t, 60, entry.BackoffSeconds)
	assert.Equal(t, before.NextEligibleAt, entry.NextEligibleAt)
	assert.True(t, entry.BackoffRespected)

	// The skip does not advance the failure count or the window.
	src := f.source(t, "src")
	assert.Equal(t, before.ConsecutiveFailures, src.ConsecutiveFailures)
	assert.Equal(t, before.NextEligibleAt, src.NextEligibleAt)
	assert.Equal(t, domain.ScanStatusSkipped, src.LastStatus)
	assert.Equal(t, f.clock, src.LastScanAt)

	// After the window closes the source is scanned again.
	failing = false
	f.clock = f.clock.Add(31 * time.Second)
	entry, err = f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusOK, entry.Status)
}

func TestScanOneForceBypassesBackoff(t *testing.T) {
	calls := 0
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	_, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)

	// Inside the window, but forced.
	f.clock = f.clock.Add(10 * time.Second)
	entry, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, false)
	require.NoError(t, err)

	assert.Equal(t, domain.ScanStatusOK, entry.Status)
	assert.False(t, entry.BackoffRespected)
	assert.Equal(t, 2, calls)
}

func TestScanOneSuccessResetsFailureState(t *testing.T) {
	calls := 0
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("boom")
		}
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, false)
		require.NoError(t, err)
	}

	entry, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusOK, entry.Status)
	assert.Equal(t, 1, entry.Attempt)

	src := f.source(t, "src")
	assert.Zero(t, src.ConsecutiveFailures)
	assert.Empty(t, src.LastError)
	assert.True(t, src.NextEligibleAt.IsZero())
	assert.Equal(t, f.clock, src.LastSuccessAt)
}

func TestScanOneMalformedPayloadIsErrorOutcome(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		return []byte(`{"postings": "not a list"`), nil
	})
	f.addSource(t, "src", true)

	entry, err := f.orch.ScanOne(context.Background(), "src", domain.TriggerManual, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanStatusError, entry.Status)
	assert.Equal(t, 1, f.source(t, "src").ConsecutiveFailures)
}

func TestScanOneUnknownSource(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		return []byte(twoPostingPayload), nil
	})

	_, err := f.orch.ScanOne(context.Background(), "missing", domain.TriggerManual, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanReingestsStableIdentitiesInPlace(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	_, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	entry, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Ingested)
	assert.Equal(t, 0, entry.Duplicates)

	postings, err := f.postings.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, postings, 2)
}

func TestScanWithoutStableIdentityAccumulatesDuplicateHints(t *testing.T) {
	payload := `[{"title": "Go Engineer", "company": "Acme"}]`
	f := newScanFixture(t, func(_ context.Context, _ domain.Source) ([]byte, error) {
		return []byte(payload), nil
	})
	f.addSource(t, "src", true)
	ctx := context.Background()

	first, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Duplicates)

	// A later scan mints a fresh identity for the same content; the dedup
	// key surfaces it as a duplicate hint instead of merging.
	f.clock = f.clock.Add(time.Hour)
	second, err := f.orch.ScanOne(ctx, "src", domain.TriggerManual, true)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Duplicates)

	postings, err := f.postings.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, 1, postings[0].DuplicateHintCount)
	assert.Equal(t, 0, postings[1].DuplicateHintCount)
}

func TestScanBatchIsolatesFailures(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, source domain.Source) ([]byte, error) {
		if source.ID == "bad" {
			return nil, errors.New("boom")
		}
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "bad", true)
	f.addSource(t, "good", true)

	result, err := f.orch.ScanBatch(context.Background(), true, domain.TriggerManual, true)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, result.TotalIngested)
	assert.Len(t, result.Results, 2)
}

func TestScanBatchEnabledOnly(t *testing.T) {
	scanned := map[string]bool{}
	f := newScanFixture(t, func(_ context.Context, source domain.Source) ([]byte, error) {
		scanned[source.ID] = true
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "on", true)
	f.addSource(t, "off", false)

	result, err := f.orch.ScanBatch(context.Background(), true, domain.TriggerScheduled, true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Requested)
	assert.True(t, scanned["on"])
	assert.False(t, scanned["off"])
}

func TestHistoryFilterAndLimit(t *testing.T) {
	f := newScanFixture(t, func(_ context.Context, source domain.Source) ([]byte, error) {
		if source.ID == "bad" {
			return nil, errors.New("boom")
		}
		return []byte(twoPostingPayload), nil
	})
	f.addSource(t, "bad", true)
	f.addSource(t, "good", true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.orch.ScanBatch(ctx, true, domain.TriggerManual, false)
		require.NoError(t, err)
		f.clock = f.clock.Add(time.Minute)
	}

	errorsOnly, err := f.orch.History(ctx, domain.ScanHistoryFilter{Status: domain.ScanStatusError})
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 3)
	for _, e := range errorsOnly {
		assert.Equal(t, "bad", e.SourceID)
	}

	limited, err := f.orch.History(ctx, domain.ScanHistoryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
