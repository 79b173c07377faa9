package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_fetch_cache_hits_total",
		Help: "Workbook cache hits served without a network call.",
	}, []string{"doc_type"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_fetch_cache_misses_total",
		Help: "Workbook cache misses that attempted a download.",
	}, []string{"doc_type"})

	staleServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oresync_fetch_stale_served_total",
		Help: "Failed downloads answered with the retained stale payload.",
	}, []string{"doc_type"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oresync_fetch_duration_seconds",
		Help:    "Remote workbook download duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"doc_type"})
)
