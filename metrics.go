package qerasure

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

/*
Metrics tracks device submissions over a run. Latency percentiles come from a
sliding window of recent submissions; the same events also feed a private
prometheus registry that can be dumped to a textfile for node_exporter.
*/
type Metrics struct {
	mu          sync.RWMutex
	Submissions int64
	Failures    int64
	Retries     int64
	Shots       int64
	TotalTime   time.Duration

	AverageLatency time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	SuccessRate    float64

	latencyWindows []timeWindow
	windowSize     int

	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	retries     prometheus.Counter
	shots       prometheus.Counter
	latency     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000), // Store last 1000 measurements
		windowSize:     1000,
		registry:       prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qerasure_submissions_total",
			Help: "Circuit submissions by condition.",
		}, []string{"condition"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qerasure_submission_failures_total",
			Help: "Failed circuit submissions by condition.",
		}, []string{"condition"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qerasure_submission_retries_total",
			Help: "Resubmissions after a failed attempt.",
		}),
		shots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qerasure_shots_total",
			Help: "Shots requested from devices.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qerasure_submission_duration_seconds",
			Help:    "Wall time of one circuit submission.",
			Buckets: prometheus.DefBuckets,
		}, []string{"condition"}),
	}

	m.registry.MustRegister(m.submissions, m.failures, m.retries, m.shots, m.latency)

	return m
}

func (m *Metrics) recordSubmission(cond Condition, startTime time.Time, shots int, success bool) {
	if m == nil {
		return
	}

	duration := time.Since(startTime)
	label := string(cond)

	m.submissions.WithLabelValues(label).Inc()
	m.latency.WithLabelValues(label).Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Submissions++
	m.TotalTime += duration

	if success {
		m.Shots += int64(shots)
		m.shots.Add(float64(shots))
	} else {
		m.Failures++
		m.failures.WithLabelValues(label).Inc()
	}

	m.SuccessRate = float64(m.Submissions-m.Failures) / float64(m.Submissions)
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) recordRetry() {
	if m == nil {
		return
	}

	m.retries.Inc()

	m.mu.Lock()
	m.Retries++
	m.mu.Unlock()
}

// updateLatencyPercentiles assumes the caller holds the write lock.
func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageLatency = m.TotalTime / time.Duration(m.Submissions)

	if len(m.latencyWindows) == m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	m.latencyWindows = append(m.latencyWindows, timeWindow{duration: duration, count: 1})

	var samples []time.Duration
	for _, w := range m.latencyWindows {
		for range w.count {
			samples = append(samples, w.duration)
		}
	}

	slices.Sort(samples)

	m.P95Latency = nearestRank(samples, 0.95)
	m.P99Latency = nearestRank(samples, 0.99)
}

// nearestRank reads quantile q off sorted samples.
func nearestRank(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	return sorted[min(int(float64(len(sorted))*q), len(sorted)-1)]
}

// ExportMetrics returns a snapshot suitable for a report.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"submissions":  m.Submissions,
		"failures":     m.Failures,
		"retries":      m.Retries,
		"shots":        m.Shots,
		"success_rate": m.SuccessRate,
		"avg_latency":  m.AverageLatency.Milliseconds(),
		"p95_latency":  m.P95Latency.Milliseconds(),
		"p99_latency":  m.P99Latency.Milliseconds(),
	}
}

// Registry exposes the prometheus collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the collectors in the prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
