// Package metrics documents the Prometheus metrics exported by the iRail
// client. Metrics are defined in their owning packages via promauto to keep
// the dependency graph acyclic; this package only anchors the registry and
// the reference list.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registerer all metrics attach to.
var Registry = prometheus.DefaultRegisterer

// Metrics reference
//
// Admission (pkg/ratelimit):
//   - irail_ratelimit_admissions_total (Counter): requests admitted
//   - irail_ratelimit_wait_seconds (Histogram): time waited before admission
//   - irail_ratelimit_waiters (Gauge): callers currently suspended
//
// Cache (pkg/cache):
//   - irail_cache_hits_total{layer} (Counter)
//   - irail_cache_misses_total{layer} (Counter)
//   - irail_cache_evictions_total{layer} (Counter): sweep removals
//   - irail_conditional_requests_total (Counter): If-None-Match sent
//   - irail_304_responses_total (Counter): answers served from cache
//   - irail_cache_errors_total{operation} (Counter)
//
// Dispatcher (pkg/client):
//   - irail_requests_total{endpoint, status} (Counter)
//   - irail_request_duration_seconds{endpoint} (Histogram)
//   - irail_errors_total{kind} (Counter): terminal failures
//
// Retry policy (pkg/client):
//   - irail_retries_total{kind} (Counter)
//   - irail_retry_backoff_seconds{kind} (Histogram)
//   - irail_retry_exhausted_total{kind} (Counter)
//   - irail_rate_limit_waits_total (Counter): 429 Retry-After waits
//
// Useful queries:
//
//	# cache hit rate
//	sum(rate(irail_cache_hits_total[5m])) /
//	(sum(rate(irail_cache_hits_total[5m])) + sum(rate(irail_cache_misses_total[5m])))
//
//	# p95 call latency
//	histogram_quantile(0.95, rate(irail_request_duration_seconds_bucket[5m]))
