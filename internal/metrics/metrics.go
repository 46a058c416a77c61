package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache tiers for the hits counter
const (
	TierMemory  = "memory"
	TierDurable = "durable"
)

// Upstream fetch results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the Prometheus collectors of the odds cache and repository
type Metrics struct {
	CacheHits         *prometheus.CounterVec
	CacheMisses       prometheus.Counter
	StaleReads        prometheus.Counter
	CorruptRecords    prometheus.Counter
	PersistFailures   prometheus.Counter
	UpstreamFetches   *prometheus.CounterVec
	StaleFallbacks    prometheus.Counter
	SnapshotsIngested prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_cache_hits_total",
			Help: "Fresh snapshot reads served from cache, by tier.",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_cache_misses_total",
			Help: "Fresh snapshot reads that found no valid snapshot.",
		}),
		StaleReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_cache_stale_reads_total",
			Help: "Snapshot reads served while ignoring validity.",
		}),
		CorruptRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_cache_corrupt_records_total",
			Help: "Durable snapshot records discarded because they failed to decode.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_cache_persist_failures_total",
			Help: "Durable snapshot writes that failed.",
		}),
		UpstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_upstream_fetches_total",
			Help: "Upstream odds fetches, by result.",
		}, []string{"result"}),
		StaleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_repository_stale_fallbacks_total",
			Help: "Fetches answered with stale data after an upstream failure.",
		}),
		SnapshotsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odds_feed_snapshots_ingested_total",
			Help: "Odds snapshots stored from the Kafka feed.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CacheHits,
			m.CacheMisses,
			m.StaleReads,
			m.CorruptRecords,
			m.PersistFailures,
			m.UpstreamFetches,
			m.StaleFallbacks,
			m.SnapshotsIngested,
		)
	}

	return m
}
