package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts state transitions and collaborator failures of a Manager.
// A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewMetrics creates session metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cacart_session_transitions_total",
				Help: "Total number of session state transitions",
			},
			[]string{"from", "to"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cacart_session_collaborator_failures_total",
				Help: "Total number of failed calls to the auth collaborator",
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.transitions, m.failures)
	return m
}

func (m *Metrics) recordTransition(from, to State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) recordFailure(operation string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation).Inc()
}
