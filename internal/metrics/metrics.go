package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts ledger record uploads by record type and status
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_uploads_total",
			Help: "Total number of ledger record uploads",
		},
		[]string{"type", "status"},
	)

	// LedgerQueriesTotal counts index queries by status
	LedgerQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_ledger_queries_total",
			Help: "Total number of ledger index queries",
		},
		[]string{"status"},
	)

	// RecordsSkipped counts read-path records dropped after a body fetch failure
	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_records_skipped_total",
			Help: "Total number of ledger records skipped during reads",
		},
		[]string{"type"},
	)

	// SignerConstructions counts signing-client constructions by chain
	SignerConstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_signer_constructions_total",
			Help: "Total number of signing client constructions",
		},
		[]string{"chain"},
	)

	// SignerCacheInvalidations counts cache clears by chain and reason
	SignerCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_signer_cache_invalidations_total",
			Help: "Total number of signing client cache invalidations",
		},
		[]string{"chain", "reason"},
	)

	// SessionTransitions counts session state transitions
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_session_transitions_total",
			Help: "Total number of wallet session state transitions",
		},
		[]string{"transition"},
	)

	// GlobeLoadDuration tracks full globe reconstruction time
	GlobeLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globe_load_duration_seconds",
			Help:    "Time to reconstruct the globe from the ledger",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PlacesResolved tracks the number of places in the last globe load
	PlacesResolved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "globe_places_resolved",
			Help: "Number of places resolved in the last globe load",
		},
	)
)
