// Package metrics provides Prometheus metrics for the risk-scoring engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Activation sources for ModelActivated.
const (
	SourceDisk    = "disk"
	SourceTrained = "trained"
	SourceRetrain = "retrain"
)

// Manager owns the engine metrics. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	predictions       *prometheus.CounterVec
	predictionErrors  prometheus.Counter
	predictionLatency prometheus.Histogram
	cacheHits         prometheus.Counter

	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	modelAccuracy    prometheus.Gauge
	modelActivations *prometheus.CounterVec
}

// NewManager creates a manager backed by its own registry unless
// WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardiorisk",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	m.predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "predictions_total",
		Help: "Predictions served, by predicted label.",
	}, []string{"label"})
	m.predictionErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "prediction_errors_total",
		Help: "Predictions that failed after a model was available.",
	})
	m.predictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "prediction_latency_seconds",
		Help:    "Inference latency excluding model initialisation.",
		Buckets: m.histogramBuckets,
	})
	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "prediction_cache_hits_total",
		Help: "Predictions answered from the result cache.",
	})
	m.trainingRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "training_runs_total",
		Help: "Train and persist cycles, by outcome.",
	}, []string{"outcome"})
	m.trainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "training_duration_seconds",
		Help:    "Wall time of train and persist cycles.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	m.modelAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "model_accuracy_percent",
		Help: "Holdout accuracy recorded for the active model.",
	})
	m.modelActivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "model_activations_total",
		Help: "Models made active, by where they came from.",
	}, []string{"source"})

	m.registry.MustRegister(
		m.predictions, m.predictionErrors, m.predictionLatency, m.cacheHits,
		m.trainingRuns, m.trainingDuration, m.modelAccuracy, m.modelActivations,
	)
}

func (m *Manager) ObservePrediction(label int, d time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	m.predictionLatency.Observe(d.Seconds())
}

func (m *Manager) PredictionFailed() {
	if m == nil {
		return
	}
	m.predictionErrors.Inc()
}

func (m *Manager) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// TrainingFinished records one train and persist cycle; err == nil counts as success.
func (m *Manager) TrainingFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.trainingRuns.WithLabelValues(outcome).Inc()
	m.trainingDuration.Observe(d.Seconds())
}

func (m *Manager) ModelActivated(source string, accuracy float64) {
	if m == nil {
		return
	}
	m.modelActivations.WithLabelValues(source).Inc()
	m.modelAccuracy.Set(accuracy)
}

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the manager's registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrainingRuns returns the counter for outcome, for tests and diagnostics.
func (m *Manager) TrainingRuns(outcome string) prometheus.Counter {
	return m.trainingRuns.WithLabelValues(outcome)
}

func (m *Manager) Activations(source string) prometheus.Counter {
	return m.modelActivations.WithLabelValues(source)
}
