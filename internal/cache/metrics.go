package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_hits_total",
			Help: "Total number of tag cache hits",
		},
		[]string{"backend"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_misses_total",
			Help: "Total number of tag cache misses",
		},
		[]string{"backend"},
	)

	cacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_writes_total",
			Help: "Total number of tag cache writes",
		},
		[]string{"backend"},
	)

	// cacheInvalidations counts invalidated tags, not removed entries.
	cacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_tag_invalidations_total",
			Help: "Total number of invalidated cache tags",
		},
		[]string{"backend"},
	)

	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "invalidate"
	)
)
