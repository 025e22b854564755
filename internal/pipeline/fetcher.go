package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"wikiquiz/internal/model"
	"wikiquiz/internal/util"
	"wikiquiz/internal/worker"
)

// articleURLPattern accepts Wikipedia article URLs: an optional language
// prefix, the /wiki/ path, and a non-namespaced page name. Namespaced pages
// (Talk:, File:, ...) carry a colon and are rejected.
var articleURLPattern = regexp.MustCompile(`^https?://([a-z]+\.)?wikipedia\.org/wiki/[^:]+$`)

// ValidateArticleURL checks the URL shape before any network attempt.
func ValidateArticleURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL: %w", model.ErrInvalidSource)
	}
	if !articleURLPattern.MatchString(rawURL) {
		return fmt.Errorf("not a Wikipedia article URL: %q: %w", rawURL, model.ErrInvalidSource)
	}
	return nil
}

// Fetcher fetches article markup from Wikipedia.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots checking is disabled
	limiter    *worker.Limiter     // nil when pacing is disabled
}

// NewFetcher creates a fetcher with the given HTTP configuration. The
// limiter may be nil.
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter) *Fetcher {
	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
		limiter:   limiter,
	}
}

// Fetch validates the URL shape, then retrieves the article markup.
// Failures are classified so the caller can decide what is retry-worthy:
// timeouts and connection faults wrap model.ErrTransient, a 404 wraps
// model.ErrNotFound, a 403 wraps model.ErrAccessDenied.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ValidateArticleURL(rawURL); err != nil {
		return "", err
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", fmt.Errorf("rate limit wait: %v: %w", err, model.ErrTransient)
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return "", fmt.Errorf("robots.txt disallows %s: %w", rawURL, model.ErrAccessDenied)
		}
		if delay > 0 && f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
				return "", fmt.Errorf("crawl delay wait: %v: %w", err, model.ErrTransient)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %v: %w", err, model.ErrInvalidSource)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("article does not exist: %s: %w", rawURL, model.ErrNotFound)
	case resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("fetch blocked: %s: %w", rawURL, model.ErrAccessDenied)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("unexpected status %d for %s: %w", resp.StatusCode, rawURL, model.ErrTransient)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %v: %w", err, model.ErrTransient)
	}

	return string(body), nil
}

// classifyTransportError maps transport-level failures onto error kinds.
// Everything at this layer is retry-worthy.
func classifyTransportError(rawURL string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("fetch timeout for %s: %w", rawURL, model.ErrTransient)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("fetch timeout for %s: %w", rawURL, model.ErrTransient)
	}
	return fmt.Errorf("fetch %s: %v: %w", rawURL, err, model.ErrTransient)
}
