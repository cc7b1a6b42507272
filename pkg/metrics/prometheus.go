// Package metrics provides Prometheus metrics for credit scoring runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score buckets cover the [0, 1000] output range in tenths.
var scoreBuckets = prometheus.LinearBuckets(0, 100, 11) //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for a scoring run.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	constLabels     map[string]string
	registry        *prometheus.Registry

	// Input quality
	eventsRead    prometheus.Counter
	eventsKept    prometheus.Counter
	eventsDropped *prometheus.CounterVec

	// Pipeline shape
	walletsScored     prometheus.Gauge
	stageDuration     *prometheus.HistogramVec
	zeroRangeFeatures *prometheus.CounterVec

	// Model quality
	trainRMSE   prometheus.Gauge
	holdoutRMSE prometheus.Gauge
	treesFitted prometheus.Gauge

	// Output distribution
	scores *prometheus.HistogramVec

	// Run outcome
	runFailures   *prometheus.CounterVec
	lastSuccessTS prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "creditscore",
		subsystem:       "pipeline",
		durationBuckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		constLabels:     make(map[string]string),
		registry:        prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_read_total",
		Help:        "Raw events handed to the normalizer",
		ConstLabels: m.constLabels,
	})

	m.eventsKept = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_kept_total",
		Help:        "Events that survived normalization",
		ConstLabels: m.constLabels,
	})

	m.eventsDropped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "events_dropped_total",
			Help:        "Events excluded during normalization, by reason",
			ConstLabels: m.constLabels,
		},
		[]string{"reason"},
	)

	m.walletsScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "wallets_scored",
		Help:        "Wallets in the last completed run",
		ConstLabels: m.constLabels,
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stage_duration_seconds",
			Help:        "Wall time per pipeline stage",
			Buckets:     m.durationBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"stage"},
	)

	m.zeroRangeFeatures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "zero_range_features_total",
			Help:        "Min-max scaled columns that were constant across the batch",
			ConstLabels: m.constLabels,
		},
		[]string{"feature"},
	)

	m.trainRMSE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_train_rmse",
		Help:        "Calibration model RMSE on the training split after the last round",
		ConstLabels: m.constLabels,
	})

	m.holdoutRMSE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_holdout_rmse",
		Help:        "Calibration model RMSE on the held-out split after the last round",
		ConstLabels: m.constLabels,
	})

	m.treesFitted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "model_trees",
		Help:        "Trees in the fitted calibration ensemble",
		ConstLabels: m.constLabels,
	})

	m.scores = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "score",
			Help:        "Distribution of emitted scores",
			Buckets:     scoreBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"kind"},
	)

	m.runFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "run_failures_total",
			Help:        "Aborted runs, by error kind",
			ConstLabels: m.constLabels,
		},
		[]string{"kind"},
	)

	m.lastSuccessTS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful run",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RecordEventsRead adds n to the raw event counter.
func RecordEventsRead(n int) {
	globalManager.eventsRead.Add(float64(n))
}

// RecordEventsKept adds n to the normalized event counter.
func RecordEventsKept(n int) {
	globalManager.eventsKept.Add(float64(n))
}

// RecordEventsDropped adds n dropped events for reason.
func RecordEventsDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.eventsDropped.WithLabelValues(reason).Add(float64(n))
}

// UpdateWalletsScored sets the wallet count of the last run.
func UpdateWalletsScored(n int) {
	globalManager.walletsScored.Set(float64(n))
}

// ObserveStageDuration records a stage's wall time in seconds.
func ObserveStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordZeroRangeFeature counts a constant column met during min-max scaling.
func RecordZeroRangeFeature(feature string) {
	globalManager.zeroRangeFeatures.WithLabelValues(feature).Inc()
}

// UpdateModelFit publishes the final train/holdout RMSE and tree count.
func UpdateModelFit(trainRMSE, holdoutRMSE float64, trees int) {
	globalManager.trainRMSE.Set(trainRMSE)
	globalManager.holdoutRMSE.Set(holdoutRMSE)
	globalManager.treesFitted.Set(float64(trees))
}

// ObserveScore records one emitted score; kind is "rule" or "credit".
func ObserveScore(kind string, score int) {
	globalManager.scores.WithLabelValues(kind).Observe(float64(score))
}

// RecordRunFailure counts an aborted run.
func RecordRunFailure(kind string) {
	globalManager.runFailures.WithLabelValues(kind).Inc()
}

// MarkRunSucceeded stamps the last-success gauge with the current time.
func MarkRunSucceeded() {
	globalManager.lastSuccessTS.SetToCurrentTime()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
