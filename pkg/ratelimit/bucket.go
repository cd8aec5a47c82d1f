// Package ratelimit implements the token-bucket admission controller that
// gates every outbound iRail request. The upstream guideline is 3 requests
// per second sustained with a burst ceiling of 8 in the first second; a
// bucket of capacity 5 refilled at 3 tokens/s yields exactly that profile.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Defaults matching the iRail API usage guideline.
const (
	DefaultCapacity   = 5
	DefaultRefillRate = 3.0
)

var (
	admissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "irail_ratelimit_admissions_total",
		Help: "Total number of requests admitted by the token bucket",
	})

	admissionWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "irail_ratelimit_wait_seconds",
		Help:    "Time spent waiting for a token before admission",
		Buckets: []float64{0.001, 0.01, 0.1, 0.333, 1, 2, 5},
	})

	admissionWaiters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "irail_ratelimit_waiters",
		Help: "Number of callers currently suspended waiting for a token",
	})
)

// Bucket is a blocking token bucket. Acquire suspends until a token is
// available and never fails except on context cancellation. Token
// accounting is serialized by a mutex that is released while waiting, so
// abandoned waiters leak no tokens and concurrent callers never consume the
// same fraction of a token.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time

	logger zerolog.Logger
	now    func() time.Time
}

// NewBucket creates a full bucket with the given burst capacity and refill
// rate in tokens per second. Non-positive values fall back to the defaults.
func NewBucket(capacity int, refillRate float64, logger zerolog.Logger) *Bucket {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if refillRate <= 0 {
		refillRate = DefaultRefillRate
	}
	b := &Bucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		refillRate: refillRate,
		logger:     logger,
		now:        time.Now,
	}
	b.lastRefill = b.now()
	return b
}

// refillLocked credits tokens for the elapsed time, capped at capacity.
// Callers must hold b.mu.
func (b *Bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now

	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

// Acquire blocks until a token is available, then consumes it. The only
// error it returns is the context's error when the caller gives up while
// suspended; in that case no token is consumed.
func (b *Bucket) Acquire(ctx context.Context) error {
	start := b.now()
	waited := false

	for {
		b.mu.Lock()
		b.refillLocked()
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()

			admissionsTotal.Inc()
			admissionWaitSeconds.Observe(b.now().Sub(start).Seconds())
			if waited {
				b.logger.Debug().
					Dur("waited", b.now().Sub(start)).
					Msg("Admitted after waiting for token")
			}
			return nil
		}

		// Sleep exactly until the next whole token accrues; no busy polling.
		wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
		b.mu.Unlock()

		if !waited {
			waited = true
			b.logger.Debug().Dur("wait", wait).Msg("Token bucket empty, waiting")
		}

		admissionWaiters.Inc()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			admissionWaiters.Dec()
			return ctx.Err()
		case <-timer.C:
			admissionWaiters.Dec()
		}
	}
}

// Tokens returns the currently available tokens after a refill, for
// observability and tests.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

// SetClock replaces the bucket's clock source (for tests). The bucket is
// reset to full against the new clock.
func (b *Bucket) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.lastRefill = now()
	b.tokens = b.capacity
}
