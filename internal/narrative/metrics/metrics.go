package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for narrative generation.
type Metrics struct {
	Results            *prometheus.CounterVec
	CacheHits          prometheus.Counter
	LockWaits          prometheus.Counter
	WaitTimeouts       prometheus.Counter
	LockTakeovers      prometheus.Counter
	Fallbacks          *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
}

// New creates a new Metrics instance with all narrative metrics registered.
func New() *Metrics {
	return &Metrics{
		Results: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_narrative_results_total",
			Help: "Narratives returned, by source",
		}, []string{"source"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_narrative_cache_hits_total",
			Help: "Narrative requests served from the cache",
		}),
		LockWaits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_narrative_lock_waits_total",
			Help: "Narrative requests that waited on another generator",
		}),
		WaitTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_narrative_wait_timeouts_total",
			Help: "Narrative waits that gave up before a result appeared",
		}),
		LockTakeovers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_narrative_lock_takeovers_total",
			Help: "Waiters that won the lock after its holder released it without a result",
		}),
		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_narrative_fallbacks_total",
			Help: "Generations that fell back to deterministic lines, by reason",
		}, []string{"reason"}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bigfive_narrative_generation_duration_seconds",
			Help:    "Duration of a narrative generation including the model call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncResult(source string) {
	if m != nil {
		m.Results.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncLockWait() {
	if m != nil {
		m.LockWaits.Inc()
	}
}

func (m *Metrics) IncWaitTimeout() {
	if m != nil {
		m.WaitTimeouts.Inc()
	}
}

func (m *Metrics) IncLockTakeover() {
	if m != nil {
		m.LockTakeovers.Inc()
	}
}

func (m *Metrics) IncFallback(reason string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(reason).Inc()
	}
}

// ObserveGeneration records the duration since start.
func (m *Metrics) ObserveGeneration(start time.Time) {
	if m != nil {
		m.GenerationDuration.Observe(time.Since(start).Seconds())
	}
}
