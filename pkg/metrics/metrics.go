// Package metrics defines the Prometheus instrumentation for the
// application: a counter of catalog calls by operation and outcome and a
// histogram of pipeline latencies. All methods are nil-receiver safe so
// callers can leave instrumentation unconfigured in tests.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors used across packages.
type Metrics struct {
	CatalogCalls     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CatalogCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_calls_total",
			Help: "Catalog API calls by operation and outcome.",
		}, []string{"operation", "status"}),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Recommendation pipeline wall time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"}),
	}
	reg.MustRegister(m.CatalogCalls, m.PipelineDuration)
	return m
}

// ObserveCatalog records one catalog call and its outcome.
func (m *Metrics) ObserveCatalog(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CatalogCalls.WithLabelValues(operation, status).Inc()
}

// TimePipeline starts a timer for the named pipeline and returns the
// function that stops it.
func (m *Metrics) TimePipeline(pipeline string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
	}
}
