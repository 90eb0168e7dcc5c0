// Package crawler fetches job detail pages from external boards and feeds
// them through normalization, deduplication and persistence.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobfeed/internal/domain"
)

const (
	// DefaultUserAgent identifies the crawler to source sites.
	DefaultUserAgent = "jobfeed-crawler/1.0 (+https://jobfeed.vn/bot)"

	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 5 << 20
)

// FetcherConfig holds politeness and retry settings
type FetcherConfig struct {
	UserAgent  string
	Timeout    time.Duration
	Delay      time.Duration
	MaxRetries int
}

// Fetcher downloads pages strictly one at a time.
type Fetcher struct {
	client    *http.Client
	extractor *Extractor
	config    FetcherConfig
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher. A nil client gets one with config.Timeout.
func NewFetcher(client *http.Client, extractor *Extractor, config FetcherConfig, logger *slog.Logger) *Fetcher {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultHTTPTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		extractor: extractor,
		config:    config,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Collect fetches urls in order and returns the listings that could be
// extracted. Failing URLs are logged and dropped. Collection stops once
// limit listings are gathered (limit <= 0 means no limit) or ctx is done.
// delay > 0 overrides the configured politeness delay for this call.
func (f *Fetcher) Collect(ctx context.Context, urls []string, limit int, delay time.Duration) []domain.RawListing {
	listings := make([]domain.RawListing, 0, len(urls))
	if delay <= 0 {
		delay = f.config.Delay
	}

	for i, u := range urls {
		if limit > 0 && len(listings) >= limit {
			break
		}
		if ctx.Err() != nil {
			f.logger.Info("Crawl cancelled", slog.Int("collected", len(listings)))
			break
		}
		if i > 0 && delay > 0 {
			if err := f.sleep(ctx, delay); err != nil {
				break
			}
		}

		body, err := f.fetchWithRetry(ctx, u, delay)
		if err != nil {
			f.logger.Warn("Dropping url after fetch failure",
				slog.String("url", u),
				slog.Any("error", err),
			)
			continue
		}

		listing := f.extractor.Extract(u, body)
		if listing == nil {
			f.logger.Warn("Skipping document without title or company", slog.String("url", u))
			continue
		}
		listings = append(listings, *listing)
	}

	f.logger.Info("Fetch finished",
		slog.Int("urls", len(urls)),
		slog.Int("collected", len(listings)),
	)
	return listings
}

// fetchWithRetry waits delay*2*attempt before retry number attempt.
func (f *Fetcher) fetchWithRetry(ctx context.Context, u string, delay time.Duration) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := delay * 2 * time.Duration(attempt)
			f.logger.Debug("Retrying fetch",
				slog.String("url", u),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)
			if err := f.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		body, err := f.fetch(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (f *Fetcher) fetch(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &permanentError{err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return "", &permanentError{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
