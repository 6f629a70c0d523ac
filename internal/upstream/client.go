// Package upstream is the HTTP client for the third-party listing APIs.
//
// Every provider lives under one base URL (for example
// https://api.sansekai.my.id/api/melolo/foryou). Requests are never cached,
// never retried, and are rate limited per provider.
package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelfeed/reelfeed-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public aggregator the feeds are served from.
	DefaultBaseURL = "https://api.sansekai.my.id/api"

	defaultTimeout   = 20 * time.Second
	defaultRPS       = 5.0
	defaultBurst     = 10
	defaultUserAgent = "reelfeed/1.0"

	// maxBodySize caps how much of an upstream body is read.
	maxBodySize = 8 << 20
)

// Config configures a Client. Zero fields take defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64
	Burst     int
	UserAgent string
	// HTTPClient replaces the default transport, mainly for tests.
	HTTPClient *http.Client
}

// Client fetches raw listing bodies from the upstream aggregator.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	userAgent string
	logger    *slog.Logger
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:      base,
		http:      hc,
		limiter:   ratelimit.New(cfg.RPS, cfg.Burst),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Close releases the client's background resources.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Get fetches base/provider/endpoint?query and returns the body of a 2xx
// response. Other statuses come back as *StatusError.
func (c *Client) Get(ctx context.Context, provider, endpoint string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, provider); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := *c.base
	u.Path = c.base.Path + "/" + provider + "/" + strings.TrimLeft(endpoint, "/")
	u.RawQuery = query.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	c.logger.Debug("upstream response",
		"provider", provider,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(body),
		"took", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}
	return body, nil
}
