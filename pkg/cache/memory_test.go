package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fixedClock returns a clock function reading t plus whatever offset the
// returned setter has been advanced to.
func fixedClock(start time.Time) (now func() time.Time, advance func(time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func TestMemoryStore_StoreAndLookup(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	fp := ComputeFingerprint("liveboard", "en", map[string]string{"station": "Gent"})

	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Lookup on empty store = %v, want ErrCacheMiss", err)
	}

	data := []byte(`{"station":"Gent"}`)
	if err := store.Store(ctx, fp, "liveboard", `"etag-1"`, data); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	entry, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if string(entry.Data) != string(data) {
		t.Errorf("Data = %s, want %s", entry.Data, data)
	}
	if entry.ETag != `"etag-1"` {
		t.Errorf("ETag = %s, want \"etag-1\"", entry.ETag)
	}
	if entry.Endpoint != "liveboard" {
		t.Errorf("Endpoint = %s, want liveboard", entry.Endpoint)
	}
	if entry.StoredAt.IsZero() {
		t.Error("StoredAt not set")
	}
}

func TestMemoryStore_StoreWithoutETag(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	fp := ComputeFingerprint("stations", "en", nil)

	if err := store.Store(ctx, fp, "stations", "", []byte("{}")); err != nil {
		t.Fatalf("Store without etag returned error: %v", err)
	}
	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrCacheMiss) {
		t.Error("etag-less response must not be cached")
	}
}

func TestMemoryStore_StoreRefreshesStoredAt(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.SetClock(now)

	ctx := context.Background()
	fp := ComputeFingerprint("stations", "en", nil)

	store.Store(ctx, fp, "stations", `"v1"`, []byte("one"))
	first, _ := store.Lookup(ctx, fp)

	advance(10 * time.Minute)
	store.Store(ctx, fp, "stations", `"v2"`, []byte("two"))
	second, _ := store.Lookup(ctx, fp)

	if !second.StoredAt.After(first.StoredAt) {
		t.Error("re-store must refresh StoredAt")
	}
	if second.ETag != `"v2"` || string(second.Data) != "two" {
		t.Error("re-store must replace the entry")
	}
}

func TestMemoryStore_LazyExpiration(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.SetClock(now)

	ctx := context.Background()
	fp := ComputeFingerprint("liveboard", "en", map[string]string{"station": "Gent"})
	store.Store(ctx, fp, "liveboard", `"etag"`, []byte("{}"))

	advance(2 * time.Hour)

	// Expired: reported as a miss, but physically retained.
	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Lookup of expired entry = %v, want ErrCacheMiss", err)
	}
	stats, _ := store.Stats(ctx)
	if stats.Count != 1 {
		t.Errorf("Count after expiry = %d, want 1 (lazy expiration keeps the entry)", stats.Count)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.SetClock(now)

	ctx := context.Background()
	oldFP := ComputeFingerprint("liveboard", "en", map[string]string{"station": "Gent"})
	store.Store(ctx, oldFP, "liveboard", `"old"`, []byte("{}"))

	advance(2 * time.Hour)
	freshFP := ComputeFingerprint("liveboard", "en", map[string]string{"station": "Brugge"})
	store.Store(ctx, freshFP, "liveboard", `"fresh"`, []byte("{}"))

	removed, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	stats, _ := store.Stats(ctx)
	if stats.Count != 1 {
		t.Errorf("Count after sweep = %d, want 1", stats.Count)
	}
	if _, err := store.Lookup(ctx, freshFP); err != nil {
		t.Errorf("fresh entry removed by sweep: %v", err)
	}
}

func TestMemoryStore_Invalidate(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	fp := ComputeFingerprint("vehicle", "en", map[string]string{"id": "BE.NMBS.IC1832"})
	store.Store(ctx, fp, "vehicle", `"etag"`, []byte("{}"))

	if err := store.Invalidate(ctx, fp); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry still present after Invalidate")
	}
}

func TestMemoryStore_InvalidateAll(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	for _, station := range []string{"Gent", "Brugge", "Leuven"} {
		fp := ComputeFingerprint("liveboard", "en", map[string]string{"station": station})
		store.Store(ctx, fp, "liveboard", `"etag"`, []byte("{}"))
	}

	if err := store.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll failed: %v", err)
	}
	stats, _ := store.Stats(ctx)
	if stats.Count != 0 {
		t.Errorf("Count after InvalidateAll = %d, want 0", stats.Count)
	}
}

func TestMemoryStore_InvalidateEndpoint(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	for _, station := range []string{"Gent", "Brugge"} {
		fp := ComputeFingerprint("liveboard", "en", map[string]string{"station": station})
		store.Store(ctx, fp, "liveboard", `"etag"`, []byte("{}"))
	}
	stationsFP := ComputeFingerprint("stations", "en", nil)
	store.Store(ctx, stationsFP, "stations", `"etag"`, []byte("{}"))

	removed, err := store.InvalidateEndpoint(ctx, "liveboard")
	if err != nil {
		t.Fatalf("InvalidateEndpoint failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := store.Lookup(ctx, stationsFP); err != nil {
		t.Errorf("unrelated endpoint entry removed: %v", err)
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.SetClock(now)

	ctx := context.Background()
	fp := ComputeFingerprint("stations", "en", nil)

	store.Lookup(ctx, fp) // miss
	store.Store(ctx, fp, "stations", `"etag"`, []byte("{}"))
	advance(5 * time.Minute)
	store.Lookup(ctx, fp) // hit
	store.Lookup(ctx, fp) // hit

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1", stats.Count)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.OldestAge != 5*time.Minute {
		t.Errorf("OldestAge = %v, want 5m", stats.OldestAge)
	}

	store.ResetStats()
	stats, _ = store.Stats(ctx)
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("counters after ResetStats = %d/%d, want 0/0", stats.Hits, stats.Misses)
	}
	if stats.Count != 1 {
		t.Error("ResetStats must not drop entries")
	}
}

func TestMemoryStore_SetMaxAge(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store.SetClock(now)

	ctx := context.Background()
	fp := ComputeFingerprint("stations", "en", nil)
	store.Store(ctx, fp, "stations", `"etag"`, []byte("{}"))

	advance(30 * time.Minute)
	if _, err := store.Lookup(ctx, fp); err != nil {
		t.Fatalf("entry should be fresh under 1h max age: %v", err)
	}

	// Lowering the horizon makes the same entry stale on the next lookup.
	store.SetMaxAge(10 * time.Minute)
	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry should be stale under 10m max age")
	}

	// Raising it brings the entry back: expiration is decided per lookup.
	store.SetMaxAge(2 * time.Hour)
	if _, err := store.Lookup(ctx, fp); err != nil {
		t.Errorf("entry should be fresh again under 2h max age: %v", err)
	}

	if got := store.MaxAge(); got != 2*time.Hour {
		t.Errorf("MaxAge = %v, want 2h", got)
	}

	// Non-positive values are ignored.
	store.SetMaxAge(0)
	if got := store.MaxAge(); got != 2*time.Hour {
		t.Errorf("MaxAge after SetMaxAge(0) = %v, want unchanged 2h", got)
	}
}

func TestNewMemoryStore_DefaultMaxAge(t *testing.T) {
	store := NewMemoryStore(0)
	if got := store.MaxAge(); got != DefaultMaxAge {
		t.Errorf("MaxAge = %v, want %v", got, DefaultMaxAge)
	}
}
