// Package metrics holds the Prometheus collectors of the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
)

// Metrics registers its collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	modelAttempts   *prometheus.CounterVec
	pipelineRuns    *prometheus.CounterVec
	pipelineSeconds prometheus.Histogram
	diffTokens      prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		modelAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_attempts_total",
			Help: "Model invocation attempts by model and outcome",
		}, []string{"model", "outcome"}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Deployment impact pipeline runs by terminal state",
		}, []string{"state"}),
		pipelineSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Deployment impact pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		}),
		diffTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diff_tokens",
			Help:    "Token cost of the budgeted diff sent to the model",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10),
		}),
	}
	reg.MustRegister(
		m.modelAttempts,
		m.pipelineRuns,
		m.pipelineSeconds,
		m.diffTokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveAttempt(model, outcome string) {
	if m == nil {
		return
	}
	m.modelAttempts.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) ObserveRun(state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(state).Inc()
	m.pipelineSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveDiffTokens(tokens int) {
	if m == nil {
		return
	}
	m.diffTokens.Observe(float64(tokens))
}

// Registry exposes the private registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
