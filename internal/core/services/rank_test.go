package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jobscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jobscout/internal/core/domain"
)

const testResume = "Experienced Go engineer building distributed systems with Kubernetes and Postgres."

type rankFixture struct {
	svc      *RankService
	postings *memory.PostingStore
	profiles *memory.ProfileStore
	runs     *memory.RunStore
	clock    time.Time
}

func newRankFixture(t *testing.T) *rankFixture {
	t.Helper()

	f := &rankFixture{
		postings: memory.NewPostingStore(),
		profiles: memory.NewProfileStore(),
		runs:     memory.NewRunStore(),
		clock:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewRankService(f.postings, f.profiles, f.runs, nil, nil, 0)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestRankRejectsShortResume(t *testing.T) {
	f := newRankFixture(t)

	_, err := f.svc.Rank(context.Background(), domain.RankRequest{ResumeText: "too short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Rank(context.Background(), domain.RankRequest{ResumeText: "   \n\t  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRankOrdersByRelevance(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Postings: []domain.Posting{
			{ID: "job-2", Title: "Marketing Manager", Description: "brand campaigns"},
			{ID: "job-1", Title: "Go Engineer", Description: "distributed systems"},
			{ID: "job-3", Title: "Java Engineer", Description: "enterprise crm"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "job-1", result.Recommendations[0].PostingID)
	assert.Equal(t, "job-3", result.Recommendations[1].PostingID)
	assert.Equal(t, "job-2", result.Recommendations[2].PostingID)

	// Both title tokens and both description tokens of job-1 appear in the
	// resume, so the weighted overlaps are exactly the weights.
	top := result.Recommendations[0]
	assert.InDelta(t, 1.0, top.Breakdown.TitleOverlap, 1e-9)
	assert.InDelta(t, 1.0, top.Breakdown.DescriptionOverlap, 1e-9)
	assert.InDelta(t, 0.90, top.Score, 1e-9)

	// Half the title tokens of job-3 match, nothing else.
	assert.InDelta(t, 0.275, result.Recommendations[1].Score, 1e-9)
	assert.Zero(t, result.Recommendations[2].Score)
}

func TestRankCombinesTitleAndDescriptionSignals(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: "Experienced backend developer, building Python API systems and tooling.",
		Postings: []domain.Posting{
			{ID: "job-2", Title: "Data Scientist", Description: "Pandas and notebooks"},
			{ID: "job-1", Title: "Backend Engineer", Description: "Build Python API services"},
			{ID: "job-3", Title: "Platform Engineer", Description: "Own developer tooling and CI pipelines"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "job-1", result.Recommendations[0].PostingID)
	assert.Equal(t, "job-3", result.Recommendations[1].PostingID)
	assert.Equal(t, "job-2", result.Recommendations[2].PostingID)

	// Half of each signal matches for job-1: 0.55/2 + 0.35/2.
	assert.InDelta(t, 0.45, result.Recommendations[0].Score, 1e-9)
	// job-3 matches on description only (3 of 6 tokens).
	assert.InDelta(t, 0.175, result.Recommendations[1].Score, 1e-9)
}

func TestRankTieBreaksByPostingID(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Postings: []domain.Posting{
			{ID: "zzz", Title: "Go Engineer"},
			{ID: "aaa", Title: "Go Engineer"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, result.Recommendations[0].Score, result.Recommendations[1].Score)
	assert.Equal(t, "aaa", result.Recommendations[0].PostingID)
	assert.Equal(t, "zzz", result.Recommendations[1].PostingID)
}

func TestRankFreshnessBonus(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Postings: []domain.Posting{
			{ID: "stale", Title: "Go Engineer", UpdatedAt: f.clock.Add(-30 * 24 * time.Hour)},
			{ID: "day", Title: "Go Engineer", UpdatedAt: f.clock.Add(-12 * time.Hour)},
			{ID: "week", Title: "Go Engineer", UpdatedAt: f.clock.Add(-5 * 24 * time.Hour)},
			{ID: "threeday", Title: "Go Engineer", UpdatedAt: f.clock.Add(-48 * time.Hour)},
		},
	})
	require.NoError(t, err)

	byID := map[string]domain.RankedRecommendation{}
	for _, rec := range result.Recommendations {
		byID[rec.PostingID] = rec
	}
	assert.InDelta(t, 0.06, byID["day"].Breakdown.FreshnessBonus, 1e-9)
	assert.InDelta(t, 0.03, byID["threeday"].Breakdown.FreshnessBonus, 1e-9)
	assert.InDelta(t, 0.01, byID["week"].Breakdown.FreshnessBonus, 1e-9)
	assert.Zero(t, byID["stale"].Breakdown.FreshnessBonus)

	assert.Equal(t, "day", result.Recommendations[0].PostingID)
}

func TestRankDuplicatePenaltyIsCapped(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Postings: []domain.Posting{
			{ID: "clean", Title: "Go Engineer"},
			{ID: "dup2", Title: "Go Engineer", DuplicateHintCount: 2},
			{ID: "dup10", Title: "Go Engineer", DuplicateHintCount: 10},
		},
	})
	require.NoError(t, err)

	byID := map[string]domain.RankedRecommendation{}
	for _, rec := range result.Recommendations {
		byID[rec.PostingID] = rec
	}
	assert.Zero(t, byID["clean"].Breakdown.DuplicatePenalty)
	assert.InDelta(t, 0.04, byID["dup2"].Breakdown.DuplicatePenalty, 1e-9)
	assert.InDelta(t, 0.08, byID["dup10"].Breakdown.DuplicatePenalty, 1e-9)
	assert.Equal(t, "clean", result.Recommendations[0].PostingID)
}

func TestRankScoreNeverNegative(t *testing.T) {
	f := newRankFixture(t)
	remote := true

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		RemoteOnly: &remote,
		Postings: []domain.Posting{
			{ID: "onsite", Title: "Welder", Location: "Plant 7", DuplicateHintCount: 10},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	assert.Zero(t, result.Recommendations[0].Score)
}

func TestRankRemoteOnlyPreference(t *testing.T) {
	f := newRankFixture(t)
	remote := true

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		RemoteOnly: &remote,
		Postings: []domain.Posting{
			{ID: "remote", Title: "Go Engineer", Location: "Remote"},
			{ID: "onsite", Title: "Go Engineer", Location: "Berlin"},
		},
	})
	require.NoError(t, err)

	byID := map[string]domain.RankedRecommendation{}
	for _, rec := range result.Recommendations {
		byID[rec.PostingID] = rec
	}
	assert.InDelta(t, 0.08, byID["remote"].Breakdown.PreferenceBonus, 1e-9)
	assert.InDelta(t, -0.05, byID["onsite"].Breakdown.PreferenceBonus, 1e-9)
	assert.Equal(t, "remote", result.Recommendations[0].PostingID)
}

func TestRankCompanyAndLocationBonus(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Companies:  []string{"ACME Corp."},
		Locations:  []string{"berlin"},
		Postings: []domain.Posting{
			{ID: "match", Title: "Go Engineer", Company: "Acme Corp", Location: "Berlin"},
			{ID: "other", Title: "Go Engineer", Company: "Globex", Location: "Paris"},
		},
	})
	require.NoError(t, err)

	byID := map[string]domain.RankedRecommendation{}
	for _, rec := range result.Recommendations {
		byID[rec.PostingID] = rec
	}
	// Company and location both match after normalisation.
	assert.InDelta(t, 0.16, byID["match"].Breakdown.PreferenceBonus, 1e-9)
	assert.Zero(t, byID["other"].Breakdown.PreferenceBonus)
}

func TestRankKeywordOverlap(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Keywords:   []string{"kubernetes", "grafana"},
		Postings: []domain.Posting{
			{ID: "k8s", Title: "Platform Engineer", Description: "kubernetes clusters"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	// Job tokens: platform, engineer, kubernetes, clusters; one keyword hits.
	assert.InDelta(t, 0.25, result.Recommendations[0].Breakdown.KeywordOverlap, 1e-9)
}

func TestRankProfilePreferencesAndOverrides(t *testing.T) {
	f := newRankFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.Save(ctx, domain.PreferenceProfile{
		ID:         "default",
		Name:       "Default",
		Keywords:   []string{"kubernetes"},
		Companies:  []string{"Acme"},
		RemoteOnly: true,
	}))

	// Profile applies as-is.
	result, err := f.svc.Rank(ctx, domain.RankRequest{
		ResumeText: testResume,
		ProfileID:  "default",
		Postings: []domain.Posting{
			{ID: "p", Title: "Go Engineer", Company: "Acme", Location: "Remote"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "default", result.AppliedProfileID)
	assert.InDelta(t, 0.16, result.Recommendations[0].Breakdown.PreferenceBonus, 1e-9)

	// Explicit request values override the profile field by field.
	noRemote := false
	result, err = f.svc.Rank(ctx, domain.RankRequest{
		ResumeText: testResume,
		ProfileID:  "default",
		Companies:  []string{"Globex"},
		RemoteOnly: &noRemote,
		Postings: []domain.Posting{
			{ID: "p", Title: "Go Engineer", Company: "Acme", Location: "Remote"},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Recommendations[0].Breakdown.PreferenceBonus)
}

func TestRankUnknownProfile(t *testing.T) {
	f := newRankFixture(t)

	_, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		ProfileID:  "missing",
		Postings:   []domain.Posting{{ID: "p", Title: "Go Engineer"}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRankStoredFallback(t *testing.T) {
	f := newRankFixture(t)
	ctx := context.Background()

	_, _, err := f.postings.Upsert(ctx, []domain.Posting{
		{ID: "stored-1", Title: "Go Engineer", DedupKey: "k1", UpdatedAt: f.clock},
		{ID: "stored-2", Title: "Data Analyst", DedupKey: "k2", UpdatedAt: f.clock},
	})
	require.NoError(t, err)

	result, err := f.svc.Rank(ctx, domain.RankRequest{ResumeText: testResume})
	require.NoError(t, err)

	assert.Equal(t, domain.PostingsSourceStored, result.PostingsSource)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "stored-1", result.Recommendations[0].PostingID)
}

func TestRankUpsertsSuppliedPostings(t *testing.T) {
	f := newRankFixture(t)
	ctx := context.Background()

	_, err := f.svc.Rank(ctx, domain.RankRequest{
		ResumeText: testResume,
		Postings:   []domain.Posting{{ID: "supplied", Title: "Go Engineer", Company: "Acme"}},
	})
	require.NoError(t, err)

	stored, err := f.postings.Get(ctx, "supplied")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.DedupKey)
}

func TestRankRecordsRun(t *testing.T) {
	f := newRankFixture(t)
	ctx := context.Background()

	result, err := f.svc.Rank(ctx, domain.RankRequest{
		ResumeText: testResume,
		Postings:   []domain.Posting{{ID: "p", Title: "Go Engineer"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)

	runs, err := f.svc.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].RecommendationCount)
	assert.Equal(t, domain.PostingsSourceRequest, runs[0].PostingsSource)
	assert.Equal(t, len(testResume), runs[0].ResumeLength)
}

func TestRankMatchedTermsAreSorted(t *testing.T) {
	f := newRankFixture(t)

	result, err := f.svc.Rank(context.Background(), domain.RankRequest{
		ResumeText: testResume,
		Postings: []domain.Posting{
			{ID: "p", Title: "Go Engineer", Description: "distributed systems with postgres"},
		},
	})
	require.NoError(t, err)

	terms := result.Recommendations[0].MatchedTerms
	assert.Equal(t, []string{"distributed", "engineer", "go", "postgres", "systems", "with"}, terms)
}
