package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates no fresh entry exists for the fingerprint.
	ErrCacheMiss = errors.New("cache miss")
)

// DefaultMaxAge is the default entry expiration, matching the upstream
// guideline of caching iRail responses for at most one hour.
const DefaultMaxAge = time.Hour

// Stats is a read-only snapshot of a store's state.
type Stats struct {
	// Count is the number of physically present entries, expired or not.
	Count int `json:"count"`

	// OldestAge is the age of the oldest physically present entry.
	// Zero when the store is empty.
	OldestAge time.Duration `json:"oldest_age"`

	// Hits counts lookups that returned a fresh entry since the last reset.
	Hits uint64 `json:"hits"`

	// Misses counts lookups that found nothing fresh since the last reset.
	Misses uint64 `json:"misses"`
}

// Store is the response cache consulted by the dispatcher.
//
// Lookup applies lazy expiration: an entry older than the configured max age
// is reported as a miss but is not deleted; physical removal happens through
// SweepExpired or explicit invalidation. All methods are safe for concurrent
// use.
type Store interface {
	// Lookup returns the fresh entry for fp, or ErrCacheMiss.
	Lookup(ctx context.Context, fp Fingerprint) (*Entry, error)

	// Store upserts an entry with StoredAt set to the current time.
	// The etag must be non-empty.
	Store(ctx context.Context, fp Fingerprint, endpoint, etag string, data []byte) error

	// Invalidate deletes the entry for fp, if any.
	Invalidate(ctx context.Context, fp Fingerprint) error

	// InvalidateAll deletes every entry.
	InvalidateAll(ctx context.Context) error

	// InvalidateEndpoint deletes every entry recorded for the given logical
	// endpoint and returns the number removed.
	InvalidateEndpoint(ctx context.Context, endpoint string) (int, error)

	// SweepExpired deletes every entry whose age exceeds the max age and
	// returns the number removed. Entries refreshed concurrently with the
	// sweep are kept.
	SweepExpired(ctx context.Context) (int, error)

	// Stats returns a snapshot for observability.
	Stats(ctx context.Context) (Stats, error)

	// ResetStats zeroes the hit/miss counters.
	ResetStats()

	// SetMaxAge changes the expiration horizon for subsequent checks.
	// Already stored entries are not evicted retroactively.
	SetMaxAge(maxAge time.Duration)

	// MaxAge returns the current expiration horizon.
	MaxAge() time.Duration
}
