// Package web retrieves pages, sitemaps, images and PDFs over HTTP for
// the crawler and the sitemap indexer.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// DefaultTimeout bounds one request including the body read.
	DefaultTimeout = 30 * time.Second

	// MaxBodyBytes caps a response body. Larger bodies are truncated.
	MaxBodyBytes = 32 << 20

	errorBodyBytes = 512
)

// Config configures a Fetcher.
type Config struct {
	UserAgent      string
	RequestsPerSec float64
	Timeout        time.Duration

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// ConfigFrom derives fetcher settings from crawler configuration.
func ConfigFrom(cfg domain.CrawlerConfig) Config {
	return Config{UserAgent: cfg.UserAgent, RequestsPerSec: cfg.RequestsPerSec}
}

// Fetcher performs rate limited GET requests.
type Fetcher struct {
	client    *http.Client
	limiter   *RateLimiter
	userAgent string
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		client:    client,
		limiter:   NewRateLimiter(cfg.RequestsPerSec),
		userAgent: cfg.UserAgent,
	}
}

// Fetch GETs u. Any status outside 2xx is an error; a 429 also slows
// down every later request.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*driven.FetchedPage, error) {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: fetch url %v", domain.ErrInvalidInput, u)
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	logger.Debug("fetch: GET %s", u)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			f.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		return nil, &domain.ProviderError{Provider: u.Host, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return &driven.FetchedPage{
		URL:         final,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}
