// Package feed provides fetching, parsing and normalization of RSS/Atom
// feeds for links-cli.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultConcurrency bounds how many feeds are fetched in parallel.
const DefaultConcurrency = 20

// DefaultTimeout is the per-request transport timeout. A hung feed server
// must not stall the run.
const DefaultTimeout = 10 * time.Second

// Fetched is one successfully retrieved feed payload.
type Fetched struct {
	SourceURL string
	Raw       string
}

// Fetcher retrieves raw feed payloads over HTTP.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewFetcher creates a Fetcher with the given transport timeout.
// A zero timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves the raw payload of one feed URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return string(body), nil
}

// FetchAll retrieves every URL with at most concurrency parallel requests
// and returns the payloads that succeeded, in input-list order. A failed
// source is logged and dropped for this run; it never aborts or delays its
// siblings. Results are collected by input position, never by completion
// order: downstream tie-breaking leans on encounter order, so network
// timing must not influence it.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, concurrency int) []Fetched {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*Fetched, len(urls))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			raw, err := f.Fetch(ctx, url)
			if err != nil {
				f.logger.Warn("feed fetch failed", zap.String("url", url), zap.Error(err))
				return
			}

			results[i] = &Fetched{SourceURL: url, Raw: raw}
		}(i, url)
	}

	wg.Wait()

	var fetched []Fetched
	for _, r := range results {
		if r != nil {
			fetched = append(fetched, *r)
		}
	}
	return fetched
}
