package reward

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricGrantsTotal       = "reward_grants_total"
	MetricGrantValue        = "reward_grant_points_total"
	MetricSoftFailuresTotal = "reward_soft_failures_total"
)

// Metrics contains Prometheus metrics for ledger operations.
// All operations are thread-safe.
type Metrics struct {
	grantsTotal  *prometheus.CounterVec
	grantPoints  *prometheus.CounterVec
	softFailures *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		grantsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricGrantsTotal,
				Help: "Total number of reward grants by reason",
			},
			[]string{"reason"},
		),
		grantPoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricGrantValue,
				Help: "Total points granted by reason",
			},
			[]string{"reason"},
		),
		softFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSoftFailuresTotal,
				Help: "Total number of swallowed ledger failures by originating operation",
			},
			[]string{"origin"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.grantsTotal,
		m.grantPoints,
		m.softFailures,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncGrants records a successful grant.
func (m *Metrics) IncGrants(reason string, value float64) {
	m.grantsTotal.WithLabelValues(reason).Inc()
	m.grantPoints.WithLabelValues(reason).Add(value)
}

// IncSoftFailures records a ledger failure that was swallowed by a
// secondary caller.
func (m *Metrics) IncSoftFailures(origin string) {
	m.softFailures.WithLabelValues(origin).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.grantsTotal,
		m.grantPoints,
		m.softFailures,
	}
}
