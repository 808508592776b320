// Package client provides the upstream HTTP client used by the proxy to reach
// the REST Countries API.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/dnscache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Prometheus metrics for upstream client operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countries_upstream_requests_total",
		Help: "Total upstream requests by status",
	}, []string{"status"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "countries_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countries_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Client performs GET requests against the upstream API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API, e.g. https://restcountries.com/v3.1
	BaseURL string

	// User-Agent header sent with every request
	UserAgent string

	// Timeout bounds a single upstream call, including reading the body
	Timeout time.Duration

	// Resolver enables DNS caching on the transport when set
	Resolver *dnscache.Resolver
}

// DefaultConfig returns a default configuration for baseURL.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: NewTransport(cfg.Resolver),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		config:  cfg,
		logger:  log.With().Str("component", "upstream").Logger(),
	}, nil
}

// Get fetches baseURL+path with rawQuery forwarded unchanged and returns the
// body of a 2xx JSON response. Every other outcome is an *UpstreamError.
func (c *Client) Get(ctx context.Context, path, rawQuery string) ([]byte, error) {
	target := c.URL(path, rawQuery)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, c.fail(&UpstreamError{
			Class:   ErrorClassNetwork,
			Message: "create request",
			Err:     err,
		}, "invalid")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", target).Msg("Fetching from upstream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&UpstreamError{
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		}, "network_error")
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, c.fail(&UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		}, status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read body",
			Err:        err,
		}, "network_error")
	}

	if !gjson.ValidBytes(body) {
		return nil, c.fail(&UpstreamError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    "response body is not valid JSON",
		}, status)
	}

	upstreamRequestsTotal.WithLabelValues(status).Inc()
	return body, nil
}

// URL builds the upstream URL for path and rawQuery.
func (c *Client) URL(path, rawQuery string) string {
	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// BaseURL returns the upstream base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) fail(err *UpstreamError, status string) error {
	upstreamErrorsTotal.WithLabelValues(string(err.Class)).Inc()
	upstreamRequestsTotal.WithLabelValues(status).Inc()

	c.logger.Warn().
		Int("status", err.StatusCode).
		Str("error_class", string(err.Class)).
		Err(err).
		Msg("Upstream request failed")
	return err
}
