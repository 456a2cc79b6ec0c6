// Package metrics exposes Prometheus instrumentation for the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogCacheHits counts unfiltered catalog requests served from cache.
	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Number of catalog requests served from the cache.",
	})

	// CatalogCacheMisses counts unfiltered catalog requests that fell
	// through to the store (miss, expiry, or cache error).
	CatalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Number of catalog requests that fell through to the store.",
	})

	// Enrollments counts enrollment attempts by outcome.
	Enrollments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollments_total",
		Help: "Number of enrollment attempts by outcome.",
	}, []string{"result"})
)
