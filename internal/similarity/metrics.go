package similarity

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricProjectsEmbedded = "similarity_projects_embedded"
	MetricPairsComputed    = "similarity_pairs_computed"
	MetricLastRunTimestamp = "similarity_last_run_timestamp_seconds"
)

// Metrics contains Prometheus metrics for similarity runs.
// All operations are thread-safe.
type Metrics struct {
	projectsEmbedded prometheus.Gauge
	pairsComputed    prometheus.Gauge
	lastRun          prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		projectsEmbedded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricProjectsEmbedded,
			Help: "Number of projects embedded in the last similarity run",
		}),
		pairsComputed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricPairsComputed,
			Help: "Number of pairwise edges written in the last similarity run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRunTimestamp,
			Help: "Unix timestamp of the last completed similarity run",
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRun records the outcome of a completed similarity run.
func (m *Metrics) ObserveRun(embedded, pairs int, completedAt int64) {
	m.projectsEmbedded.Set(float64(embedded))
	m.pairsComputed.Set(float64(pairs))
	m.lastRun.Set(float64(completedAt))
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.projectsEmbedded,
		m.pairsComputed,
		m.lastRun,
	}
}
