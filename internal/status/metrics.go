// Package status exposes the HTTP surface of a running daemon: health
// and status JSON endpoints plus Prometheus metrics.
package status

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks daemon-level counters. Counters are exported through a
// private Prometheus registry and mirrored in atomics so /status can
// report them as JSON without scraping.
type Metrics struct {
	registry *prometheus.Registry

	appends            prometheus.Counter
	queries            prometheus.Counter
	extractionRuns     prometheus.Counter
	extractionFailures prometheus.Counter
	extractionSeconds  prometheus.Histogram

	appendCount  atomic.Int64
	queryCount   atomic.Int64
	runCount     atomic.Int64
	failCount    atomic.Int64
	totalRunTime atomic.Int64 // nanoseconds
}

// NewMetrics creates a metrics set backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		appends: factory.NewCounter(prometheus.CounterOpts{
			Name: "recall_appends_total",
			Help: "Question/answer pairs appended to the index.",
		}),
		queries: factory.NewCounter(prometheus.CounterOpts{
			Name: "recall_queries_total",
			Help: "Relevance queries served.",
		}),
		extractionRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "recall_extraction_runs_total",
			Help: "Extraction job executions, successful or not.",
		}),
		extractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "recall_extraction_failures_total",
			Help: "Extraction job executions that returned an error.",
		}),
		extractionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recall_extraction_duration_seconds",
			Help:    "Wall time of extraction job executions.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAppend records a persisted exchange.
func (m *Metrics) RecordAppend() {
	m.appends.Inc()
	m.appendCount.Add(1)
}

// RecordQuery records a served relevance query.
func (m *Metrics) RecordQuery() {
	m.queries.Inc()
	m.queryCount.Add(1)
}

// RecordExtraction records one extraction job execution.
func (m *Metrics) RecordExtraction(d time.Duration, err error) {
	m.extractionRuns.Inc()
	m.extractionSeconds.Observe(d.Seconds())
	m.runCount.Add(1)
	m.totalRunTime.Add(int64(d))
	if err != nil {
		m.extractionFailures.Inc()
		m.failCount.Add(1)
	}
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	runs := m.runCount.Load()
	snap := MetricsSnapshot{
		Appends:            m.appendCount.Load(),
		Queries:            m.queryCount.Load(),
		ExtractionRuns:     runs,
		ExtractionFailures: m.failCount.Load(),
	}
	if runs > 0 {
		snap.AvgExtraction = time.Duration(m.totalRunTime.Load() / runs)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Appends            int64         `json:"appends"`
	Queries            int64         `json:"queries"`
	ExtractionRuns     int64         `json:"extraction_runs"`
	ExtractionFailures int64         `json:"extraction_failures"`
	AvgExtraction      time.Duration `json:"avg_extraction_ns"`
}
