package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default Store: an in-memory map owned by a single
// client instance. It holds no lock while a caller is suspended elsewhere;
// every operation is a short critical section.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Fingerprint]*Entry
	maxAge  time.Duration
	hits    uint64
	misses  uint64

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory store with the given max entry age.
// A non-positive maxAge falls back to DefaultMaxAge.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &MemoryStore{
		entries: make(map[Fingerprint]*Entry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Lookup returns the fresh entry for fp. Expired entries are treated as
// absent for this call but stay in the map until SweepExpired or an explicit
// invalidation removes them.
func (s *MemoryStore) Lookup(_ context.Context, fp Fingerprint) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[fp]
	if !ok || entry.IsExpired(s.maxAge, s.now()) {
		s.misses++
		CacheMisses.WithLabelValues(layerMemory).Inc()
		return nil, ErrCacheMiss
	}

	s.hits++
	CacheHits.WithLabelValues(layerMemory).Inc()
	return entry, nil
}

// Store upserts the entry for fp with StoredAt set to now. Entries without
// an ETag are rejected silently; absence of an entry is the only "no cache"
// state, so an etag-less response simply is not cached.
func (s *MemoryStore) Store(_ context.Context, fp Fingerprint, endpoint, etag string, data []byte) error {
	if etag == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[fp] = &Entry{
		Data:     data,
		ETag:     etag,
		Endpoint: endpoint,
		StoredAt: s.now(),
	}
	return nil
}

// Invalidate deletes the entry for fp.
func (s *MemoryStore) Invalidate(_ context.Context, fp Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, fp)
	return nil
}

// InvalidateAll deletes every entry.
func (s *MemoryStore) InvalidateAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Fingerprint]*Entry)
	return nil
}

// InvalidateEndpoint deletes every entry recorded for the given endpoint.
func (s *MemoryStore) InvalidateEndpoint(_ context.Context, endpoint string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for fp, entry := range s.entries {
		if entry.Endpoint == endpoint {
			delete(s.entries, fp)
			removed++
		}
	}
	return removed, nil
}

// SweepExpired physically deletes expired entries. The age check and the
// delete happen under the same lock, so an entry refreshed by a concurrent
// Store is never removed.
func (s *MemoryStore) SweepExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for fp, entry := range s.entries {
		if entry.IsExpired(s.maxAge, now) {
			delete(s.entries, fp)
			removed++
		}
	}
	if removed > 0 {
		CacheEvictions.WithLabelValues(layerMemory).Add(float64(removed))
	}
	return removed, nil
}

// Stats returns a snapshot of the store's state.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Count:  len(s.entries),
		Hits:   s.hits,
		Misses: s.misses,
	}

	now := s.now()
	for _, entry := range s.entries {
		if age := entry.Age(now); age > stats.OldestAge {
			stats.OldestAge = age
		}
	}
	return stats, nil
}

// ResetStats zeroes the hit/miss counters.
func (s *MemoryStore) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = 0
	s.misses = 0
}

// SetMaxAge changes the expiration horizon for subsequent checks.
func (s *MemoryStore) SetMaxAge(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxAge = maxAge
}

// MaxAge returns the current expiration horizon.
func (s *MemoryStore) MaxAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxAge
}

// SetClock replaces the store's clock source (for tests).
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

var _ Store = (*MemoryStore)(nil)
