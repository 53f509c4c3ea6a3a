// Package metrics exposes Prometheus counters for fetches, evaluations and syncs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmap_fetches_total",
		Help: "The total number of source fetches by outcome",
	}, []string{"outcome"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedmap_fetch_duration_seconds",
		Help:    "Time spent fetching source documents",
		Buckets: prometheus.DefBuckets,
	})

	SampleCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmap_sample_cache_total",
		Help: "Sample cache lookups by result",
	}, []string{"result"})

	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmap_evaluations_total",
		Help: "The total number of mapping evaluations by target mode",
	}, []string{"mode"})

	RecordsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedmap_records_resolved_total",
		Help: "The total number of records produced by evaluations",
	})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmap_sync_runs_total",
		Help: "Completed sync runs by status",
	}, []string{"status"})
)

// Fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)
