// Package fetch implements the payload fetcher port: a single dispatch over
// the source kind that returns the raw payload bytes for inline and remote
// sources alike.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driven"
)

const (
	// DefaultTimeout bounds one remote payload fetch.
	DefaultTimeout = 15 * time.Second

	// defaultRatePerSecond throttles remote fetches so batch scans stay
	// polite to upstream feeds.
	defaultRatePerSecond = 2.0

	// maxPayloadBytes caps the response body read from a remote source.
	maxPayloadBytes = 10 << 20
)

// Ensure Fetcher implements the interface.
var _ driven.PayloadFetcher = (*Fetcher)(nil)

// Fetcher retrieves source payloads. Inline sources return their embedded
// payload; remote sources are fetched over HTTP within the timeout and
// behind a shared token-bucket limiter.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher. Zero values select the defaults.
func NewFetcher(timeout time.Duration, ratePerSecond float64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if ratePerSecond <= 0 {
		ratePerSecond = defaultRatePerSecond
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Fetch returns the raw payload for the source.
func (f *Fetcher) Fetch(ctx context.Context, source domain.Source) ([]byte, error) {
	switch source.Kind {
	case domain.SourceKindInline:
		if len(source.Inline) == 0 {
			return nil, fmt.Errorf("%w: inline source %q has no payload", domain.ErrFetchFailed, source.ID)
		}
		return source.Inline, nil

	case domain.SourceKindRemote:
		return f.fetchRemote(ctx, source)

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, source.Kind)
	}
}

// fetchRemote performs the bounded HTTP fetch.
func (f *Fetcher) fetchRemote(ctx context.Context, source domain.Source) ([]byte, error) {
	if source.URL == "" {
		return nil, fmt.Errorf("%w: remote source %q has no url", domain.ErrFetchFailed, source.ID)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", domain.ErrFetchFailed, resp.StatusCode, source.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetchFailed, err)
	}
	return body, nil
}
