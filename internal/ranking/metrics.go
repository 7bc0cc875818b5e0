package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricGini                     = "ranking_engagement_gini"
	MetricAvgFinalScore            = "ranking_avg_final_score"
	MetricProjectsRanked           = "ranking_projects_ranked"
	MetricLastRunTimestamp         = "ranking_last_run_timestamp_seconds"
	MetricFeedInvalidationFailures = "ranking_feed_invalidation_failures_total"
)

// Metrics contains Prometheus metrics for ranking runs.
// All operations are thread-safe.
type Metrics struct {
	gini                     prometheus.Gauge
	avgFinalScore            prometheus.Gauge
	projectsRanked           prometheus.Gauge
	lastRun                  prometheus.Gauge
	feedInvalidationFailures prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		gini: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricGini,
			Help: "Gini coefficient over raw engagement from the last ranking run",
		}),
		avgFinalScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricAvgFinalScore,
			Help: "Average final score from the last ranking run",
		}),
		projectsRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricProjectsRanked,
			Help: "Number of projects scored in the last ranking run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRunTimestamp,
			Help: "Unix timestamp of the last completed ranking run",
		}),
		feedInvalidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricFeedInvalidationFailures,
			Help: "Total feed cache invalidations that failed after a ranking run",
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.gini,
		m.avgFinalScore,
		m.projectsRanked,
		m.lastRun,
		m.feedInvalidationFailures,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRun records the outcome of a completed ranking run.
func (m *Metrics) ObserveRun(stats PlatformStats) {
	m.gini.Set(stats.EngagementGini)
	m.avgFinalScore.Set(stats.AvgFinalScore)
	m.projectsRanked.Set(float64(stats.ProjectCount))
	m.lastRun.Set(float64(stats.ComputedAt.Unix()))
}

// IncFeedInvalidationFailures increments the feed invalidation failure counter.
func (m *Metrics) IncFeedInvalidationFailures() {
	m.feedInvalidationFailures.Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.gini,
		m.avgFinalScore,
		m.projectsRanked,
		m.lastRun,
		m.feedInvalidationFailures,
	}
}
