// Package client implements the core iRail HTTP client: a request
// dispatcher that threads every logical call through the token-bucket
// admission controller, the ETag response cache and the retry policy.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beltransit/irail-go/pkg/cache"
	"github.com/beltransit/irail-go/pkg/logging"
	"github.com/beltransit/irail-go/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irail_requests_total",
		Help: "Total iRail requests by endpoint and outcome",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "irail_request_duration_seconds",
		Help:    "Logical call duration in seconds by endpoint, waits included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irail_errors_total",
		Help: "Total terminal failures by kind",
	}, []string{"kind"})
)

// DefaultBaseURL is the public iRail API host.
const DefaultBaseURL = "https://api.irail.be"

// Languages accepted by the iRail API.
var supportedLanguages = map[string]bool{"nl": true, "fr": true, "en": true, "de": true}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the iRail API. Defaults to DefaultBaseURL.
	BaseURL string

	// Language for API responses: nl, fr, en or de. Anything else falls
	// back to en. The language participates in cache fingerprints.
	Language string

	// UserAgent sent on every request, as the upstream guideline asks.
	UserAgent string

	// HTTPClient is the transport. When nil the client creates and owns one
	// with a 30s timeout.
	HTTPClient *http.Client

	// Store is the response cache. When nil an in-memory store scoped to
	// this client is created with CacheMaxAge.
	Store cache.Store

	// CacheMaxAge is the entry expiration horizon for the default store.
	CacheMaxAge time.Duration

	// BurstCapacity and RefillRate configure the admission token bucket.
	BurstCapacity int
	RefillRate    float64

	// Retry is the backoff schedule and attempt ceilings.
	Retry RetryConfig
}

// DefaultConfig returns the configuration matching the iRail usage
// guidelines: 3 req/s sustained with a burst of 5, one-hour cache, three
// retries with capped exponential backoff.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Language:      "en",
		UserAgent:     "irail-go/1.0 (https://github.com/beltransit/irail-go)",
		CacheMaxAge:   cache.DefaultMaxAge,
		BurstCapacity: ratelimit.DefaultCapacity,
		RefillRate:    ratelimit.DefaultRefillRate,
		Retry:         DefaultRetryConfig(),
	}
}

// Client is the iRail API client. Each instance exclusively owns one
// response cache and one admission bucket; many goroutines may issue calls
// through the same instance concurrently.
type Client struct {
	httpClient *http.Client
	ownsHTTP   bool
	store      cache.Store
	limiter    *ratelimit.Bucket
	config     Config
	logger     zerolog.Logger
}

// New creates an iRail client from cfg, filling unset fields with defaults.
func New(cfg Config) (*Client, error) {
	logger := logging.NewLogger("irail-client")

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if !supportedLanguages[cfg.Language] {
		if cfg.Language != "" {
			logger.Warn().Str("lang", cfg.Language).Msg("Unsupported language, falling back to en")
		}
		cfg.Language = "en"
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = cache.DefaultMaxAge
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}

	store := cfg.Store
	if store == nil {
		store = cache.NewMemoryStore(cfg.CacheMaxAge)
	}

	client := &Client{
		store:   store,
		limiter: ratelimit.NewBucket(cfg.BurstCapacity, cfg.RefillRate, logging.NewLogger("irail-ratelimit")),
		config:  cfg,
		logger:  logger,
	}

	if cfg.HTTPClient != nil {
		client.httpClient = cfg.HTTPClient
	} else {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
		client.ownsHTTP = true
	}

	return client, nil
}

// Execute performs one logical call against an endpoint and returns the raw
// JSON payload. It validates parameters, consults the cache, waits for
// admission before every transport attempt (retries included), issues a
// conditional request when a fresh cached entry exists, and applies the
// retry policy on failure. Every call ends in either data or an *APIError.
func (c *Client) Execute(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := validateParams(endpoint, params); err != nil {
		errorsTotal.WithLabelValues(string(FailureClient)).Inc()
		return nil, &APIError{Kind: FailureClient, Endpoint: endpoint, Err: err}
	}

	fp := cache.ComputeFingerprint(endpoint, c.config.Language, params)

	entry, err := c.store.Lookup(ctx, fp)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache lookup error")
		entry = nil
	}

	var (
		attempts   int
		retries    int
		rlWaits    int
		lastStatus int
		lastCause  error
	)

	for {
		// Admission gates every transport attempt, retries included.
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("admission wait aborted: %w", err)
		}

		req, err := c.buildRequest(ctx, endpoint, params, entry)
		if err != nil {
			errorsTotal.WithLabelValues(string(FailureClient)).Inc()
			return nil, &APIError{Kind: FailureClient, Endpoint: endpoint, Err: err}
		}

		attempts++
		resp, err := c.httpClient.Do(req)

		if err == nil {
			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return c.handleOK(ctx, resp, endpoint, fp)

			case resp.StatusCode == http.StatusNotModified:
				resp.Body.Close()
				requestsTotal.WithLabelValues(endpoint, "304").Inc()
				cache.NotModifiedResponses.Inc()
				if entry == nil {
					// A 304 can only answer a conditional request; without
					// the entry that produced the validator the response is
					// unusable.
					errorsTotal.WithLabelValues(string(FailureServer)).Inc()
					return nil, &APIError{
						Kind:       FailureServer,
						StatusCode: resp.StatusCode,
						Attempts:   attempts,
						Endpoint:   endpoint,
						Err:        ErrMissingCachedEntry,
					}
				}
				c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified, returning cached data")
				return entry.Data, nil
			}
		}

		cls := Classify(resp, err)
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastStatus = resp.StatusCode
			requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		} else {
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		}

		switch cls.Outcome {
		case NoRetry:
			errorsTotal.WithLabelValues(string(FailureClient)).Inc()
			c.logger.Error().
				Str("endpoint", endpoint).
				Int("status", lastStatus).
				Msg("Permanent client request error")
			return nil, &APIError{
				Kind:       FailureClient,
				StatusCode: lastStatus,
				Attempts:   attempts,
				Endpoint:   endpoint,
			}

		case RateLimited:
			hint := cls.RetryAfter
			if hint <= 0 {
				hint = c.config.Retry.DefaultRetryAfter
			}
			rlWaits++
			if rlWaits > c.config.Retry.MaxRateLimitWaits {
				errorsTotal.WithLabelValues(string(FailureRateLimit)).Inc()
				return nil, &APIError{
					Kind:       FailureRateLimit,
					StatusCode: lastStatus,
					Attempts:   attempts,
					RetryAfter: hint,
					Endpoint:   endpoint,
				}
			}
			rateLimitWaitsTotal.Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Dur("retry_after", hint).
				Msg("Rate limited, honoring Retry-After before re-admission")
			if err := c.sleep(ctx, hint); err != nil {
				return nil, err
			}
			// Back to admission; a 429 wait consumes no retry slot.
			continue

		case RetryNetwork, RetryServer:
			kind := cls.Kind()
			if err != nil {
				lastCause = err
			} else {
				lastCause = fmt.Errorf("server returned status %d", resp.StatusCode)
			}

			retries++
			if retries > c.config.Retry.MaxRetries {
				retryExhaustedTotal.WithLabelValues(string(kind)).Inc()
				errorsTotal.WithLabelValues(string(FailureExhausted)).Inc()
				c.logger.Warn().
					Str("endpoint", endpoint).
					Int("attempts", attempts).
					Msg("Retry attempts exhausted")
				return nil, &APIError{
					Kind:       FailureExhausted,
					StatusCode: lastStatus,
					Attempts:   attempts,
					Endpoint:   endpoint,
					Err:        fmt.Errorf("%w: %v", ErrRetriesExhausted, lastCause),
				}
			}

			backoff := c.config.Retry.Backoff(retries)
			retriesTotal.WithLabelValues(string(kind)).Inc()
			retryBackoffSeconds.WithLabelValues(string(kind)).Observe(backoff.Seconds())
			c.logger.Warn().
				Str("endpoint", endpoint).
				Str("kind", string(kind)).
				Int("retry", retries).
				Dur("backoff", backoff).
				Err(lastCause).
				Msg("Transient failure, retrying after backoff")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			continue
		}
	}
}

// buildRequest assembles the GET request for one attempt, attaching the
// cached validator when a fresh entry exists.
func (c *Client) buildRequest(ctx context.Context, endpoint string, params map[string]string, entry *cache.Entry) (*http.Request, error) {
	reqURL := fmt.Sprintf("%s/%s/", c.config.BaseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	query := url.Values{}
	query.Set("format", "json")
	query.Set("lang", c.config.Language)
	for k, v := range params {
		query.Set(k, v)
	}
	req.URL.RawQuery = query.Encode()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	if entry != nil && entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", entry.ETag).
			Msg("Sending conditional request")
	}

	return req, nil
}

// handleOK reads the body and stores the new cache entry when the response
// carries an ETag. A 200 refreshes the entry's storage time.
func (c *Client) handleOK(ctx context.Context, resp *http.Response, endpoint string, fp cache.Fingerprint) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(FailureNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{
			Kind:       FailureNetwork,
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}
	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if etag := resp.Header.Get("ETag"); etag != "" {
		if err := c.store.Store(ctx, fp, endpoint, etag, body); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", etag).
				Msg("Cached response")
		}
	} else {
		c.logger.Debug().Str("endpoint", endpoint).Msg("No ETag header, response not cached")
	}

	return body, nil
}

// sleep waits d or until the context is cancelled, whichever comes first.
// No lock is held while suspended.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Fingerprint computes the cache fingerprint the client would use for a
// call, with the client's configured language.
func (c *Client) Fingerprint(endpoint string, params map[string]string) cache.Fingerprint {
	return cache.ComputeFingerprint(endpoint, c.config.Language, params)
}

// Invalidate deletes one cache entry.
func (c *Client) Invalidate(ctx context.Context, fp cache.Fingerprint) error {
	return c.store.Invalidate(ctx, fp)
}

// InvalidateAll clears the response cache.
func (c *Client) InvalidateAll(ctx context.Context) error {
	c.logger.Info().Msg("Response cache cleared")
	return c.store.InvalidateAll(ctx)
}

// InvalidateEndpoint removes all cached entries for one logical endpoint
// and returns the number removed.
func (c *Client) InvalidateEndpoint(ctx context.Context, endpoint string) (int, error) {
	removed, err := c.store.InvalidateEndpoint(ctx, endpoint)
	if removed > 0 {
		c.logger.Info().Str("endpoint", endpoint).Int("removed", removed).Msg("Invalidated cache entries")
	}
	return removed, err
}

// SweepExpired physically removes expired cache entries.
func (c *Client) SweepExpired(ctx context.Context) (int, error) {
	return c.store.SweepExpired(ctx)
}

// SetCacheMaxAge changes the cache expiration horizon for subsequent
// lookups; existing entries are not evicted retroactively.
func (c *Client) SetCacheMaxAge(maxAge time.Duration) {
	c.store.SetMaxAge(maxAge)
	c.logger.Info().Dur("max_age", maxAge).Msg("Cache max age updated")
}

// CacheStats returns a snapshot of the response cache.
func (c *Client) CacheStats(ctx context.Context) (cache.Stats, error) {
	return c.store.Stats(ctx)
}

// Language returns the configured response language.
func (c *Client) Language() string {
	return c.config.Language
}

// SetHTTPClient replaces the transport (for testing).
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
	c.ownsHTTP = false
}

// Close releases resources the client owns. A caller-supplied HTTP client
// is left untouched.
func (c *Client) Close() error {
	if c.ownsHTTP {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
