package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store ("memory", "bounded")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses, including reads of expired entries
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"store"},
	)

	// CacheExpired tracks entries dropped lazily because their TTL elapsed
	CacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_cache_expired_total",
			Help: "Total number of cache entries dropped on read after expiry",
		},
		[]string{"store"},
	)

	// CacheSets tracks writes
	CacheSets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_cache_sets_total",
			Help: "Total number of response cache writes",
		},
		[]string{"store"},
	)

	// CacheEntries tracks the current number of stored entries
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "countries_cache_entries",
			Help: "Current number of entries held by the response cache",
		},
		[]string{"store"},
	)
)
