package jobs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(vec *prometheus.CounterVec, labels ...string) float64 {
	metric, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return -1
	}
	var m dto.Metric
	if err := metric.(prometheus.Metric).Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func getHistogramVecSampleCount(vec *prometheus.HistogramVec, labels ...string) uint64 {
	metric, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := metric.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func getHistogramVecSampleSum(vec *prometheus.HistogramVec, labels ...string) float64 {
	metric, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return -1
	}
	var m dto.Metric
	if err := metric.(prometheus.Metric).Write(&m); err != nil {
		return -1
	}
	return m.GetHistogram().GetSampleSum()
}

func TestMetricsRegisterAndGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, jobType := range []string{JobTypeRankingRecompute, JobTypeSimilarityRecompute, JobTypeCollabMatching} {
		m.IncJobsTotal(jobType, StatusSuccess)
		m.ObserveJobDuration(jobType, 0.05)
		m.IncJobErrors(jobType, "run_error")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := map[string]int{}
	for _, family := range families {
		found[family.GetName()] = len(family.GetMetric())
	}

	for _, name := range []string{MetricBackgroundJobsTotal, MetricBackgroundJobsDuration, MetricBackgroundJobErrorsTotal} {
		if found[name] != 3 {
			t.Errorf("%s: got %d label combinations, want 3", name, found[name])
		}
	}
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := NewMetrics().Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestMetricsCountsByLabel(t *testing.T) {
	m := NewMetrics()

	m.IncJobsTotal(JobTypeRankingRecompute, StatusSuccess)
	m.IncJobsTotal(JobTypeRankingRecompute, StatusSuccess)
	m.IncJobsTotal(JobTypeRankingRecompute, StatusFailure)
	m.IncJobErrors(JobTypeSimilarityRecompute, "timeout")

	if got := getCounterVecValue(m.jobsTotal, JobTypeRankingRecompute, StatusSuccess); got != 2 {
		t.Errorf("success count = %f, want 2", got)
	}
	if got := getCounterVecValue(m.jobsTotal, JobTypeRankingRecompute, StatusFailure); got != 1 {
		t.Errorf("failure count = %f, want 1", got)
	}
	if got := getCounterVecValue(m.jobErrors, JobTypeSimilarityRecompute, "timeout"); got != 1 {
		t.Errorf("timeout error count = %f, want 1", got)
	}
	// Untouched label combinations stay at zero.
	if got := getCounterVecValue(m.jobsTotal, JobTypeCollabMatching, StatusSuccess); got != 0 {
		t.Errorf("untouched count = %f, want 0", got)
	}
}

func TestMetricsObserveJobDuration(t *testing.T) {
	m := NewMetrics()

	m.ObserveJobDuration(JobTypeRankingRecompute, 0.25)
	m.ObserveJobDuration(JobTypeRankingRecompute, 0.75)

	if got := getHistogramVecSampleCount(m.jobsDuration, JobTypeRankingRecompute); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
	if got := getHistogramVecSampleSum(m.jobsDuration, JobTypeRankingRecompute); got != 1.0 {
		t.Errorf("sample sum = %f, want 1.0", got)
	}
}

func TestJobTypeConstants(t *testing.T) {
	// Job type labels double as reward origins; renaming one breaks
	// dashboards and the origin labels together.
	want := map[string]string{
		JobTypeRankingRecompute:    "ranking_recompute",
		JobTypeSimilarityRecompute: "similarity_recompute",
		JobTypeCollabMatching:      "collab_matching",
	}
	for got, expected := range want {
		if got != expected {
			t.Errorf("job type = %q, want %q", got, expected)
		}
	}
}
