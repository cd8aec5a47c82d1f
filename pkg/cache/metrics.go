package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store layer labels.
const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

var (
	// CacheHits tracks lookups that returned a fresh entry, by store layer.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irail_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks lookups that found nothing fresh, by store layer.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irail_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"layer"},
	)

	// CacheEvictions tracks entries removed by expiration sweeps.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irail_cache_evictions_total",
			Help: "Total number of cache entries removed by expiration sweeps",
		},
		[]string{"layer"},
	)

	// ConditionalRequestsSent tracks requests carrying If-None-Match.
	ConditionalRequestsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irail_conditional_requests_total",
			Help: "Total number of conditional requests sent with If-None-Match",
		},
	)

	// NotModifiedResponses tracks 304 responses answered from cache.
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irail_304_responses_total",
			Help: "Total number of 304 Not Modified responses served from cache",
		},
	)

	// CacheErrors tracks cache backend operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irail_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"},
	)
)
