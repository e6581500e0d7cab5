package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for server-driven sessions.
type Metrics struct {
	Started   *prometheus.CounterVec
	Completed *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	Scored    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Started: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_sessions_started_total",
			Help: "Sessions started, by domain",
		}, []string{"domain"}),
		Completed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_sessions_completed_total",
			Help: "Sessions that sealed a domain result, by domain",
		}, []string{"domain"}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_sessions_rejected_answers_total",
			Help: "Answers rejected by the state machine, by step",
		}, []string{"step"}),
		Scored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_sessions_stateless_scores_total",
			Help: "Complete answer sets scored without a session",
		}),
	}
}

func (m *Metrics) IncStarted(domain string) {
	if m != nil {
		m.Started.WithLabelValues(domain).Inc()
	}
}

func (m *Metrics) IncCompleted(domain string) {
	if m != nil {
		m.Completed.WithLabelValues(domain).Inc()
	}
}

func (m *Metrics) IncRejected(step string) {
	if m != nil {
		m.Rejected.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncScored() {
	if m != nil {
		m.Scored.Inc()
	}
}
