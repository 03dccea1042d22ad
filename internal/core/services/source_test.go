package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jobscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jobscout/internal/core/domain"
)

func validInlineSource(id string) domain.Source {
	return domain.Source{
		ID:      id,
		Name:    "Inline " + id,
		Kind:    domain.SourceKindInline,
		Inline:  json.RawMessage(`[{"title": "Go Engineer"}]`),
		Enabled: true,
	}
}

func TestSourceUpsertRejectsMalformedConfiguration(t *testing.T) {
	store := memory.NewSourceStore()
	svc := NewSourceService(store, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		source domain.Source
	}{
		{"missing id", domain.Source{Name: "x", Kind: domain.SourceKindInline}},
		{"missing name", domain.Source{ID: "s", Kind: domain.SourceKindInline}},
		{"unknown kind", domain.Source{ID: "s", Name: "x", Kind: "ftp"}},
		{"remote without url", domain.Source{ID: "s", Name: "x", Kind: domain.SourceKindRemote}},
		{"inline without payload", domain.Source{ID: "s", Name: "x", Kind: domain.SourceKindInline}},
		{"inline malformed payload", domain.Source{
			ID: "s", Name: "x", Kind: domain.SourceKindInline,
			Inline: json.RawMessage(`{"postings": 42}`),
		}},
		{"inline posting without title", domain.Source{
			ID: "s", Name: "x", Kind: domain.SourceKindInline,
			Inline: json.RawMessage(`[{"company": "Acme"}]`),
		}},
		{"inline empty list", domain.Source{
			ID: "s", Name: "x", Kind: domain.SourceKindInline,
			Inline: json.RawMessage(`[]`),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, tt.source)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Nothing was stored.
	sources, err := store.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSourceUpsertNewSource(t *testing.T) {
	svc := NewSourceService(memory.NewSourceStore(), nil, nil)

	saved, err := svc.Upsert(context.Background(), validInlineSource("src"))
	require.NoError(t, err)

	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
	assert.Zero(t, saved.ConsecutiveFailures)
	assert.Empty(t, saved.LastStatus)
}

func TestSourceUpsertPreservesScanState(t *testing.T) {
	store := memory.NewSourceStore()
	svc := NewSourceService(store, nil, nil)
	ctx := context.Background()

	// Seed a source that the scan engine has already driven into backoff.
	now := time.Now().UTC().Truncate(time.Second)
	seeded := validInlineSource("src")
	seeded.LastScanAt = now
	seeded.LastStatus = domain.ScanStatusError
	seeded.LastError = "boom"
	seeded.ConsecutiveFailures = 2
	seeded.NextEligibleAt = now.Add(2 * time.Minute)
	seeded.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, store.Save(ctx, seeded))

	// A configuration update must not clobber the scan state.
	update := validInlineSource("src")
	update.Name = "Renamed"
	saved, err := svc.Upsert(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", saved.Name)
	assert.Equal(t, 2, saved.ConsecutiveFailures)
	assert.Equal(t, domain.ScanStatusError, saved.LastStatus)
	assert.Equal(t, "boom", saved.LastError)
	assert.Equal(t, now.Add(2*time.Minute), saved.NextEligibleAt)
	assert.Equal(t, now.Add(-time.Hour), saved.CreatedAt)
}

func TestSourceGetUnknown(t *testing.T) {
	svc := NewSourceService(memory.NewSourceStore(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceListEnabledOnly(t *testing.T) {
	svc := NewSourceService(memory.NewSourceStore(), nil, nil)
	ctx := context.Background()

	enabled := validInlineSource("on")
	disabled := validInlineSource("off")
	disabled.Enabled = false

	_, err := svc.Upsert(ctx, enabled)
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, disabled)
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyEnabled, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyEnabled, 1)
	assert.Equal(t, "on", onlyEnabled[0].ID)
}
