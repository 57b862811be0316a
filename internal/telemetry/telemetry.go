// Package telemetry exports Prometheus metrics for the triage engine.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all triage Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	PipelinesProcessed *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	StepDuration       *prometheus.HistogramVec

	// Classification metrics
	Classifications *prometheus.CounterVec

	// Priority metrics
	PriorityOutcomes *prometheus.CounterVec
	TrainingSamples  prometheus.Counter
	ModelRetrains    prometheus.Counter

	// Memory / forecast metrics
	SeasonalAlerts *prometheus.CounterVec
	SpikeAlerts    *prometheus.CounterVec

	// Degradation metrics
	LLMFallbacks *prometheus.CounterVec
}

// Provider wraps the metrics and their registry.
type Provider struct {
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider initializes telemetry on a private registry so multiple
// providers can coexist in one process.
func NewProvider() *Provider {
	registry := prometheus.NewRegistry()
	return &Provider{
		Metrics:  initMetrics(promauto.With(registry)),
		registry: registry,
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func initMetrics(factory promauto.Factory) *Metrics {
	m := &Metrics{}

	m.PipelinesProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_pipelines_processed_total",
		Help: "Total pipeline runs by outcome (completed, rejected)",
	}, []string{"outcome"})

	m.PipelineDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_pipeline_duration_seconds",
		Help:    "End-to-end pipeline latency for one complaint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})

	m.StepDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "triage_step_duration_seconds",
		Help:    "Per-step pipeline latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"step"})

	m.Classifications = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_classifications_total",
		Help: "Total classifications by assigned department",
	}, []string{"dept_id"})

	m.PriorityOutcomes = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_priority_outcomes_total",
		Help: "Total priority outcomes by label and source",
	}, []string{"label", "source"})

	m.TrainingSamples = factory.NewCounter(prometheus.CounterOpts{
		Name: "triage_training_samples_total",
		Help: "Confirmed outcomes accepted into the model training buffer",
	})

	m.ModelRetrains = factory.NewCounter(prometheus.CounterOpts{
		Name: "triage_model_retrains_total",
		Help: "Full retrains of the online priority model",
	})

	m.SeasonalAlerts = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_seasonal_alerts_total",
		Help: "Seasonal recurrence alerts generated, by issue category",
	}, []string{"category"})

	m.SpikeAlerts = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_spike_alerts_total",
		Help: "Spike forecast alerts raised, by issue category",
	}, []string{"category"})

	m.LLMFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_llm_fallbacks_total",
		Help: "Deterministic fallbacks taken after LLM failures, by agent",
	}, []string{"agent"})

	return m
}

// RecordPipeline records one pipeline run.
func (p *Provider) RecordPipeline(outcome string, duration time.Duration) {
	p.Metrics.PipelinesProcessed.WithLabelValues(outcome).Inc()
	p.Metrics.PipelineDuration.Observe(duration.Seconds())
}

// RecordStep records one pipeline step's latency.
func (p *Provider) RecordStep(step string, duration time.Duration) {
	p.Metrics.StepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordClassification increments the per-department classification counter.
func (p *Provider) RecordClassification(deptID string) {
	p.Metrics.Classifications.WithLabelValues(deptID).Inc()
}

// RecordPriority increments the outcome counter for a label/source pair.
func (p *Provider) RecordPriority(label, source string) {
	p.Metrics.PriorityOutcomes.WithLabelValues(label, source).Inc()
}
