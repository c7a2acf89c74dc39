// Package monitoring exposes Prometheus metrics for the form generation
// pipeline. Stage timings are observable here but are not part of any API
// contract.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. A fresh instance per test keeps
// registration conflict-free.
type Metrics struct {
	registry *prometheus.Registry

	FormsGenerated    *prometheus.CounterVec
	SubmissionsTotal  prometheus.Counter
	SubmissionsFailed prometheus.Counter
	StageDuration     *prometheus.HistogramVec
}

// New creates and registers the pipeline collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FormsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formforge_forms_generated_total",
			Help: "Forms generated, labelled by schema source (llm or fallback)",
		}, []string{"source"}),
		SubmissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formforge_submissions_total",
			Help: "Accepted form submissions",
		}),
		SubmissionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formforge_submissions_rejected_total",
			Help: "Submissions rejected by response validation",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formforge_generation_stage_duration_seconds",
			Help:    "Duration of each form generation stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.FormsGenerated,
		m.SubmissionsTotal,
		m.SubmissionsFailed,
		m.StageDuration,
	)
	return m
}

// ObserveStage records the duration of one pipeline stage
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
