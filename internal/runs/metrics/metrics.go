package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for suite persistence and verification.
type Metrics struct {
	Saves         *prometheus.CounterVec
	BackendErrors *prometheus.CounterVec
	CircuitOpen   *prometheus.GaugeVec
	Verifications *prometheus.CounterVec
	SummaryBuilds prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Saves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_runs_saves_total",
			Help: "Suite save attempts, by outcome",
		}, []string{"outcome"}),
		BackendErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_runs_backend_errors_total",
			Help: "Result store failures, by backend",
		}, []string{"backend"}),
		CircuitOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bigfive_runs_circuit_open",
			Help: "1 while the breaker of a result store backend is open",
		}, []string{"backend"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bigfive_runs_verifications_total",
			Help: "Seal verifications, by kind and result",
		}, []string{"kind", "valid"}),
		SummaryBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bigfive_runs_summaries_total",
			Help: "Derived summaries built for stored suites",
		}),
	}
}

func (m *Metrics) IncSave(outcome string) {
	if m != nil {
		m.Saves.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncBackendError(backend string) {
	if m != nil {
		m.BackendErrors.WithLabelValues(backend).Inc()
	}
}

// SetCircuitOpen flips the open gauge of backend.
func (m *Metrics) SetCircuitOpen(backend string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.CircuitOpen.WithLabelValues(backend).Set(v)
}

func (m *Metrics) IncVerification(kind string, valid bool) {
	if m != nil {
		m.Verifications.WithLabelValues(kind, strconv.FormatBool(valid)).Inc()
	}
}

func (m *Metrics) IncSummary() {
	if m != nil {
		m.SummaryBuilds.Inc()
	}
}
