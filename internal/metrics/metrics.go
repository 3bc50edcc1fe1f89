package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the portal's Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	sessionOps    *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediflow",
			Subsystem: "session",
			Name:      "operations_total",
			Help:      "Session store operations by operation and result.",
		}, []string{"op", "result"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediflow",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Access gate decisions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.sessionOps, m.gateDecisions)
	return m
}

func (m *Metrics) SessionOp(op, result string) {
	if m == nil {
		return
	}
	m.sessionOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) GateDecision(outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}
