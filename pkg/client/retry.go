package client

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irail_retries_total",
		Help: "Total number of retry attempts by failure kind",
	}, []string{"kind"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "irail_retry_backoff_seconds",
		Help:    "Backoff duration before re-issuing a request, by failure kind",
		Buckets: []float64{0.5, 1, 2, 4, 8, 10, 30},
	}, []string{"kind"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irail_retry_exhausted_total",
		Help: "Total number of calls that exhausted their retry budget",
	}, []string{"kind"})

	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "irail_rate_limit_waits_total",
		Help: "Total number of waits honoring a 429 Retry-After hint",
	})
)

// Outcome is the retry policy's decision for one failed attempt.
type Outcome int

const (
	// NoRetry: permanent request error, surface immediately.
	NoRetry Outcome = iota

	// RetryNetwork: transport-level failure, retry with backoff.
	RetryNetwork

	// RetryServer: HTTP 5xx, retry with backoff.
	RetryServer

	// RateLimited: HTTP 429, wait the advertised duration and re-enter
	// admission without consuming a retry slot.
	RateLimited
)

// Classification is the result of classifying one attempt's outcome.
type Classification struct {
	Outcome    Outcome
	StatusCode int

	// RetryAfter is the server-advertised wait for RateLimited, or zero.
	RetryAfter time.Duration
}

// Classify maps a transport result onto the retry policy's taxonomy.
// 2xx and 304 are terminal successes and must not be passed here.
func Classify(resp *http.Response, err error) Classification {
	if err != nil {
		return Classification{Outcome: RetryNetwork}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Classification{
			Outcome:    RateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return Classification{Outcome: RetryServer, StatusCode: resp.StatusCode}
	default:
		return Classification{Outcome: NoRetry, StatusCode: resp.StatusCode}
	}
}

// Kind maps the classification onto the failure taxonomy.
func (c Classification) Kind() FailureKind {
	switch c.Outcome {
	case RetryNetwork:
		return FailureNetwork
	case RetryServer:
		return FailureServer
	case RateLimited:
		return FailureRateLimit
	default:
		return FailureClient
	}
}

// RetryConfig holds the backoff schedule and attempt ceilings.
type RetryConfig struct {
	// MaxRetries is the number of re-issues after the first attempt for
	// network/server failures. 3 retries means 4 total tries.
	MaxRetries int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// MaxRateLimitWaits bounds how many 429 waits a single call honors.
	// Rate-limit waits do not consume MaxRetries slots.
	MaxRateLimitWaits int

	// DefaultRetryAfter is used when a 429 carries no usable Retry-After.
	DefaultRetryAfter time.Duration
}

// DefaultRetryConfig returns the schedule used against the iRail API:
// backoff min(1s * 2^(n-1), 10s), at most 3 retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        10 * time.Second,
		MaxRateLimitWaits: 3,
		DefaultRetryAfter: time.Second,
	}
}

// Backoff returns the wait before retry n (1-indexed): the initial backoff
// doubled per attempt, capped at MaxBackoff. Deterministic so that callers
// observing the schedule see 1s, 2s, 4s with the defaults.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := c.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if backoff > c.MaxBackoff {
		return c.MaxBackoff
	}
	return backoff
}

// parseRetryAfter parses a Retry-After header value, supporting both
// delay-seconds and HTTP-date forms. Returns 0 when absent or unusable.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}
