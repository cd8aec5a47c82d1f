// Package cache provides the ETag response cache used by the iRail client.
//
// Each logical request is identified by a Fingerprint, a SHA-256 digest over
// the endpoint name, response language and the parameter set sorted by key.
// A cache entry holds the last 200 response body together with its ETag and
// storage time. Lookups apply lazy expiration: entries older than the
// configurable max age are reported as misses but stay in place until
// SweepExpired or an explicit invalidation removes them. A 304 Not Modified
// answer is served from the entry without refreshing its storage time.
//
// Two Store implementations exist:
//
//   - MemoryStore: per-client in-memory map, the default. Created at client
//     construction and discarded with it.
//   - RedisStore: shared cache for multi-process proxy deployments.
//
// # Basic usage
//
//	store := cache.NewMemoryStore(time.Hour)
//
//	fp := cache.ComputeFingerprint("liveboard", "en", map[string]string{
//		"station": "Brussels-South",
//	})
//
//	entry, err := store.Lookup(ctx, fp)
//	if err == cache.ErrCacheMiss {
//		// fetch from the API, then:
//		// store.Store(ctx, fp, "liveboard", etag, body)
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - irail_cache_hits_total{layer}
//   - irail_cache_misses_total{layer}
//   - irail_cache_evictions_total{layer}
//   - irail_conditional_requests_total
//   - irail_304_responses_total
//   - irail_cache_errors_total{operation}
package cache
