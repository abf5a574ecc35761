package migration

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeInstalled = "installed"
	outcomeMigrated  = "migrated"
	outcomeKept      = "kept"
	outcomeRejected  = "rejected"
)

// Metrics holds the Prometheus instruments of an Engine.
type Metrics struct {
	DecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates the engine instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "placefit",
			Name:      "migration_decisions_total",
			Help:      "Total number of migration decision rounds by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.DecisionsTotal)
	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(outcome).Inc()
}
