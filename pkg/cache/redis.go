package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidEntry indicates a cache entry could not be decoded.
var ErrInvalidEntry = errors.New("invalid cache entry")

const (
	redisKeyPrefix = "irail:cache:"

	// redisHardTTL bounds how long an entry may physically linger in Redis.
	// Freshness is decided by the entry's own age against the store's max
	// age, so raising the max age at runtime does not resurrect entries and
	// lowering it does not require eager eviction.
	redisHardTTL = 24 * time.Hour
)

// RedisStore is a Store backed by Redis, for proxy deployments where several
// processes share one response cache. The in-memory store remains the
// default for library use; entries here survive a single process but are
// bounded by redisHardTTL.
type RedisStore struct {
	redis  *redis.Client
	maxAge atomic.Int64 // nanoseconds

	statsMu sync.Mutex
	hits    uint64
	misses  uint64

	now func() time.Time
}

// NewRedisStore creates a Redis-backed store with the given max entry age.
func NewRedisStore(redisClient *redis.Client, maxAge time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	s := &RedisStore{
		redis: redisClient,
		now:   time.Now,
	}
	s.maxAge.Store(int64(maxAge))
	return s
}

func redisKey(fp Fingerprint) string {
	return redisKeyPrefix + string(fp)
}

// Lookup returns the fresh entry for fp, or ErrCacheMiss. Stale entries are
// reported as misses but left for SweepExpired.
func (s *RedisStore) Lookup(ctx context.Context, fp Fingerprint) (*Entry, error) {
	data, err := s.redis.Get(ctx, redisKey(fp)).Bytes()
	if err != nil {
		if err == redis.Nil {
			s.countMiss()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired(s.MaxAge(), s.now()) {
		s.countMiss()
		return nil, ErrCacheMiss
	}

	s.statsMu.Lock()
	s.hits++
	s.statsMu.Unlock()
	CacheHits.WithLabelValues(layerRedis).Inc()
	return &entry, nil
}

func (s *RedisStore) countMiss() {
	s.statsMu.Lock()
	s.misses++
	s.statsMu.Unlock()
	CacheMisses.WithLabelValues(layerRedis).Inc()
}

// Store upserts the entry for fp. Responses without an ETag are not cached.
func (s *RedisStore) Store(ctx context.Context, fp Fingerprint, endpoint, etag string, data []byte) error {
	if etag == "" {
		return nil
	}

	entry := &Entry{
		Data:     data,
		ETag:     etag,
		Endpoint: endpoint,
		StoredAt: s.now(),
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, redisKey(fp), encoded, redisHardTTL).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate deletes the entry for fp.
func (s *RedisStore) Invalidate(ctx context.Context, fp Fingerprint) error {
	if err := s.redis.Del(ctx, redisKey(fp)).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidateAll deletes every entry under the cache prefix.
func (s *RedisStore) InvalidateAll(ctx context.Context) error {
	_, err := s.scan(ctx, func(key string, _ *Entry) (bool, error) {
		return true, nil
	})
	return err
}

// InvalidateEndpoint deletes every entry recorded for the given endpoint.
func (s *RedisStore) InvalidateEndpoint(ctx context.Context, endpoint string) (int, error) {
	return s.scan(ctx, func(_ string, entry *Entry) (bool, error) {
		return entry != nil && entry.Endpoint == endpoint, nil
	})
}

// SweepExpired deletes every entry older than the max age.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	maxAge := s.MaxAge()
	now := s.now()
	removed, err := s.scan(ctx, func(_ string, entry *Entry) (bool, error) {
		return entry != nil && entry.IsExpired(maxAge, now), nil
	})
	if removed > 0 {
		CacheEvictions.WithLabelValues(layerRedis).Add(float64(removed))
	}
	return removed, err
}

// scan walks all cache keys and deletes those for which shouldDelete
// returns true, returning the number deleted. A nil entry is passed when the
// value cannot be decoded; undecodable entries are only deleted by
// InvalidateAll.
func (s *RedisStore) scan(ctx context.Context, shouldDelete func(key string, entry *Entry) (bool, error)) (int, error) {
	removed := 0
	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		var entry *Entry
		if data, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var decoded Entry
			if json.Unmarshal(data, &decoded) == nil {
				entry = &decoded
			}
		}

		del, err := shouldDelete(key, entry)
		if err != nil {
			return removed, err
		}
		if del {
			if err := s.redis.Del(ctx, key).Err(); err != nil {
				CacheErrors.WithLabelValues("delete").Inc()
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	return removed, nil
}

// Stats returns a snapshot of the store's state.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	s.statsMu.Lock()
	stats := Stats{Hits: s.hits, Misses: s.misses}
	s.statsMu.Unlock()

	now := s.now()
	iter := s.redis.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		stats.Count++
		data, err := s.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(data, &entry) != nil {
			continue
		}
		if age := entry.Age(now); age > stats.OldestAge {
			stats.OldestAge = age
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w", err)
	}
	return stats, nil
}

// ResetStats zeroes the hit/miss counters.
func (s *RedisStore) ResetStats() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.hits = 0
	s.misses = 0
}

// SetMaxAge changes the expiration horizon for subsequent checks.
func (s *RedisStore) SetMaxAge(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	s.maxAge.Store(int64(maxAge))
}

// MaxAge returns the current expiration horizon.
func (s *RedisStore) MaxAge() time.Duration {
	return time.Duration(s.maxAge.Load())
}

var _ Store = (*RedisStore)(nil)
