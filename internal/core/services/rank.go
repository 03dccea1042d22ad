package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
	"github.com/custodia-labs/jobscout/internal/normalize"
)

// Scoring weights and bonuses. All six signals surface in the result
// breakdown so a ranking can be explained term by term.
const (
	titleWeight       = 0.55
	descriptionWeight = 0.35
	keywordWeight     = 0.10

	companyBonus  = 0.08
	locationBonus = 0.08
	remoteBonus   = 0.08
	remotePenalty = 0.05

	duplicatePenaltyStep = 0.02
	duplicatePenaltyCap  = 0.08

	// matchedTermsCap bounds the matched-terms list in each recommendation.
	matchedTermsCap = 12

	// minResumeLength is the minimum accepted resume text length.
	minResumeLength = 20

	// defaultStoredFallbackLimit bounds the stored-postings fallback.
	defaultStoredFallbackLimit = 100
)

// Freshness step function over age since the posting was last updated.
const (
	freshnessDay  = 0.06
	freshness3Day = 0.03
	freshnessWeek = 0.01
)

// Ensure RankService implements the interface.
var _ driving.RankService = (*RankService)(nil)

// RankService scores postings against resume text and resolved preferences.
// Scoring is read-only and stateless over its working set; only the run
// summary and the side-effect upsert touch storage.
type RankService struct {
	postings driven.PostingStore
	profiles driven.ProfileStore
	runs     driven.RunStore
	audit    driven.AuditSink
	log      *zap.Logger

	storedFallbackLimit int
	now                 func() time.Time
}

// NewRankService creates a rank service. The audit sink is optional;
// storedFallbackLimit <= 0 selects the default.
func NewRankService(
	postings driven.PostingStore,
	profiles driven.ProfileStore,
	runs driven.RunStore,
	audit driven.AuditSink,
	log *zap.Logger,
	storedFallbackLimit int,
) *RankService {
	if log == nil {
		log = zap.NewNop()
	}
	if storedFallbackLimit <= 0 {
		storedFallbackLimit = defaultStoredFallbackLimit
	}
	return &RankService{
		postings:            postings,
		profiles:            profiles,
		runs:                runs,
		audit:               audit,
		log:                 log,
		storedFallbackLimit: storedFallbackLimit,
		now:                 time.Now,
	}
}

// Rank scores the request's postings, or falls back to the most recently
// updated stored postings, orders them by descending score (posting ID
// ascending on ties) and records the run.
func (s *RankService) Rank(ctx context.Context, req domain.RankRequest) (*domain.RankResult, error) {
	resume := strings.TrimSpace(req.ResumeText)
	if len(resume) < minResumeLength {
		return nil, fmt.Errorf("%w: resume text shorter than %d characters", domain.ErrInvalidInput, minResumeLength)
	}

	prefs, appliedProfileID, err := s.resolvePreferences(ctx, req)
	if err != nil {
		return nil, err
	}

	postings := req.Postings
	postingsSource := domain.PostingsSourceRequest
	if len(postings) > 0 {
		// Caller-supplied postings are persisted as a side effect, but the
		// scoring below uses them exactly as supplied.
		if _, _, err := s.upsertSideEffect(ctx, postings); err != nil {
			return nil, err
		}
	} else {
		postingsSource = domain.PostingsSourceStored
		postings, err = s.postings.List(ctx, s.storedFallbackLimit)
		if err != nil {
			return nil, fmt.Errorf("list stored postings: %w", err)
		}
	}

	generatedAt := s.now().UTC()
	resumeTokens := normalize.Tokens(resume)

	recommendations := make([]domain.RankedRecommendation, 0, len(postings))
	for _, p := range postings {
		recommendations = append(recommendations, s.score(resumeTokens, p, prefs, generatedAt))
	}
	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score == recommendations[j].Score {
			return recommendations[i].PostingID < recommendations[j].PostingID
		}
		return recommendations[i].Score > recommendations[j].Score
	})

	run := domain.RecommendationRun{
		ID:                  uuid.NewString(),
		GeneratedAt:         generatedAt,
		RecommendationCount: len(recommendations),
		ResumeLength:        len(resume),
		PostingsSource:      postingsSource,
	}
	if err := s.runs.Record(ctx, run); err != nil {
		return nil, fmt.Errorf("record recommendation run: %w", err)
	}

	s.log.Info("rank run finished",
		zap.String("run_id", run.ID),
		zap.String("postings_source", postingsSource),
		zap.String("profile_id", appliedProfileID),
		zap.Int("recommendations", len(recommendations)))
	recordAudit(ctx, s.audit, "rank", "ok",
		fmt.Sprintf("run=%s count=%d source=%s", run.ID, len(recommendations), postingsSource))

	return &domain.RankResult{
		RunID:            run.ID,
		GeneratedAt:      generatedAt,
		PostingsSource:   postingsSource,
		AppliedProfileID: appliedProfileID,
		Recommendations:  recommendations,
	}, nil
}

// Runs lists recorded recommendation runs, most recent first.
func (s *RankService) Runs(ctx context.Context, limit int) ([]domain.RecommendationRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommendation runs: %w", err)
	}
	return runs, nil
}

// resolvePreferences merges explicit request values over the referenced
// profile, field by field. An unset request field falls back to the profile;
// no profile means no preference.
func (s *RankService) resolvePreferences(ctx context.Context, req domain.RankRequest) (domain.Preferences, string, error) {
	var prefs domain.Preferences
	appliedProfileID := ""

	if req.ProfileID != "" {
		profile, err := s.profiles.Get(ctx, req.ProfileID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return prefs, "", fmt.Errorf("profile %q: %w", req.ProfileID, domain.ErrNotFound)
			}
			return prefs, "", fmt.Errorf("get profile %q: %w", req.ProfileID, err)
		}
		prefs.Keywords = profile.Keywords
		prefs.Locations = profile.Locations
		prefs.Companies = profile.Companies
		prefs.RemoteOnly = profile.RemoteOnly
		appliedProfileID = profile.ID
	}

	if len(req.Keywords) > 0 {
		prefs.Keywords = req.Keywords
	}
	if len(req.Locations) > 0 {
		prefs.Locations = req.Locations
	}
	if len(req.Companies) > 0 {
		prefs.Companies = req.Companies
	}
	if req.RemoteOnly != nil {
		prefs.RemoteOnly = *req.RemoteOnly
	}
	return prefs, appliedProfileID, nil
}

// upsertSideEffect persists caller-supplied postings with derived dedup keys.
func (s *RankService) upsertSideEffect(ctx context.Context, postings []domain.Posting) (int, int, error) {
	now := s.now().UTC()
	prepared := make([]domain.Posting, 0, len(postings))
	for i, p := range postings {
		if p.ID == "" {
			return 0, 0, fmt.Errorf("%w: posting %d has no id", domain.ErrInvalidInput, i)
		}
		p.DedupKey = normalize.DedupKey(p.Title, p.Company, p.Location, p.ApplyURL)
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		prepared = append(prepared, p)
	}
	updated, duplicates, err := s.postings.Upsert(ctx, prepared)
	if err != nil {
		return 0, 0, fmt.Errorf("upsert request postings: %w", err)
	}
	return updated, duplicates, nil
}

// score computes the weighted multi-signal score for one posting.
func (s *RankService) score(
	resumeTokens map[string]struct{},
	p domain.Posting,
	prefs domain.Preferences,
	at time.Time,
) domain.RankedRecommendation {
	titleTokens := normalize.Tokens(p.Title)
	descriptionTokens := normalize.Tokens(p.Description)
	jobTokens := normalize.Tokens(p.Title, p.Description, p.Company)

	breakdown := domain.ScoreBreakdown{
		TitleOverlap:       overlap(resumeTokens, titleTokens),
		DescriptionOverlap: overlap(resumeTokens, descriptionTokens),
		KeywordOverlap:     overlap(normalize.Tokens(prefs.Keywords...), jobTokens),
		PreferenceBonus:    s.preferenceBonus(p, prefs),
		FreshnessBonus:     freshnessBonus(p.UpdatedAt, at),
		DuplicatePenalty:   math.Min(duplicatePenaltyStep*float64(p.DuplicateHintCount), duplicatePenaltyCap),
	}

	score := titleWeight*breakdown.TitleOverlap +
		descriptionWeight*breakdown.DescriptionOverlap +
		keywordWeight*breakdown.KeywordOverlap +
		breakdown.PreferenceBonus +
		breakdown.FreshnessBonus -
		breakdown.DuplicatePenalty
	if score < 0 {
		score = 0
	}

	return domain.RankedRecommendation{
		PostingID:    p.ID,
		Title:        p.Title,
		Company:      p.Company,
		Location:     p.Location,
		ApplyURL:     p.ApplyURL,
		Score:        score,
		MatchedTerms: matchedTerms(resumeTokens, jobTokens),
		Breakdown:    breakdown,
	}
}

// preferenceBonus applies the company, location and remote-only signals.
// A remote-only mismatch is an active penalty, not just a missing bonus.
func (s *RankService) preferenceBonus(p domain.Posting, prefs domain.Preferences) float64 {
	bonus := 0.0

	if company := normalize.Text(p.Company); company != "" {
		for _, preferred := range prefs.Companies {
			if normalize.Text(preferred) == company {
				bonus += companyBonus
				break
			}
		}
	}
	if location := normalize.Text(p.Location); location != "" {
		for _, preferred := range prefs.Locations {
			if normalize.Text(preferred) == location {
				bonus += locationBonus
				break
			}
		}
	}

	if prefs.RemoteOnly {
		tokens := normalize.Tokens(p.Location, p.Title, p.Description)
		if _, ok := tokens["remote"]; ok {
			bonus += remoteBonus
		} else {
			bonus -= remotePenalty
		}
	}
	return bonus
}

// freshnessBonus is a step function of age since the posting last changed.
// A missing timestamp earns nothing.
func freshnessBonus(updatedAt, at time.Time) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	age := at.Sub(updatedAt)
	switch {
	case age <= 24*time.Hour:
		return freshnessDay
	case age <= 72*time.Hour:
		return freshness3Day
	case age <= 168*time.Hour:
		return freshnessWeek
	default:
		return 0
	}
}

// overlap is |a ∩ b| / |b|, zero when b is empty.
func overlap(a, b map[string]struct{}) float64 {
	if len(b) == 0 {
		return 0
	}
	matches := 0
	for token := range a {
		if _, ok := b[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(b))
}

// matchedTerms returns the sorted intersection of resume and job tokens,
// capped for readability. Sorting keeps the output reproducible.
func matchedTerms(resumeTokens, jobTokens map[string]struct{}) []string {
	terms := make([]string, 0, matchedTermsCap)
	for token := range resumeTokens {
		if _, ok := jobTokens[token]; ok {
			terms = append(terms, token)
		}
	}
	sort.Strings(terms)
	if len(terms) > matchedTermsCap {
		terms = terms[:matchedTermsCap]
	}
	return terms
}
