// Package scraper fetches dining-hall menu listings and nutrition labels from
// the campus food portal and enriches scraped items with label data.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"dining-planner/internal/cache"
	"dining-planner/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://menuportal23.dining.rutgers.edu/foodpronet/"
	DefaultUserAgent = "Mozilla/5.0 (compatible; RutgersMenuScraper/1.0)"
	DefaultMenuTTL   = 6 * time.Hour
	DefaultLabelTTL  = 30 * 24 * time.Hour
	DefaultTimeout   = 20 * time.Second
)

var (
	// ErrUnexpectedStatus is returned when the portal answers with a non-200
	// status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedLabel is returned when a label document carries neither a
	// facts block nor a specs table.
	ErrMalformedLabel = errors.New("malformed nutrition label")
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	MenuCache  cache.Cache
	LabelCache cache.Cache
	MenuTTL    time.Duration
	LabelTTL   time.Duration

	HTTPClient *http.Client
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

// Client talks to the dining portal. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   *url.URL
	userAgent string
	limiter   *rate.Limiter

	menus    cache.Cache
	labels   cache.Cache
	menuTTL  time.Duration
	labelTTL time.Duration

	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewClient creates a portal client.
func NewClient(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %q: %w", base, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", base)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	c := &Client{
		http:      httpClient,
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		menus:     opts.MenuCache,
		labels:    opts.LabelCache,
		menuTTL:   opts.MenuTTL,
		labelTTL:  opts.LabelTTL,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.menus == nil {
		c.menus = cache.NewMemoryCache()
	}
	if c.labels == nil {
		c.labels = cache.NewMemoryCache()
	}
	if c.menuTTL <= 0 {
		c.menuTTL = DefaultMenuTTL
	}
	if c.labelTTL <= 0 {
		c.labelTTL = DefaultLabelTTL
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// fetch performs a rate-limited GET and returns the body.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// cached returns the document for key from store, fetching rawURL on a
// miss. The fetched document is written back; a failed write is logged and
// otherwise ignored.
func (c *Client) cached(ctx context.Context, kind string, store cache.Cache, ttl time.Duration, key, rawURL string) ([]byte, error) {
	if data, ok := store.Get(key, ttl); ok {
		c.metrics.ObserveFetch(kind, metrics.OutcomeCacheHit, 0)
		return data, nil
	}

	start := time.Now()
	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		c.metrics.ObserveFetch(kind, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	c.metrics.ObserveFetch(kind, metrics.OutcomeFetched, time.Since(start))

	if err := store.Put(key, data); err != nil {
		c.logger.Debug("cache write failed", "kind", kind, "key", key, "error", err)
	}
	return data, nil
}
