package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for result records.
type Metrics struct {
	Recorded *prometheus.CounterVec
	Lookups  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_results_recorded_total",
			Help: "Result records created, by seal validity",
		}, []string{"validity"}),
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_results_lookups_total",
			Help: "Result record reads, by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) IncRecorded(invalid bool) {
	if m == nil {
		return
	}
	validity := "valid"
	if invalid {
		validity = "invalid"
	}
	m.Recorded.WithLabelValues(validity).Inc()
}

func (m *Metrics) IncLookup(kind, outcome string) {
	if m != nil {
		m.Lookups.WithLabelValues(kind, outcome).Inc()
	}
}
