// Package metrics provides Prometheus metrics for the cutoff forecaster.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the forecaster.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pipeline Metrics - dataset and model shape
	datasetRecords   prometheus.Gauge
	trainingRows     prometheus.Gauge
	trainingDuration prometheus.Histogram
	treeDepth        prometheus.Gauge
	treeLeaves       prometheus.Gauge

	// Forecast Metrics
	forecastsTotal    prometheus.Counter
	suppressedTracks  prometheus.Counter
	forecastLatency   prometheus.Histogram
	predictedEstimate *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// defaultBucketsMs covers sub-millisecond forecasts up to slow training runs.
var defaultBucketsMs = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // histogram layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cutoffs",
		subsystem:        "forecaster",
		histogramBuckets: defaultBucketsMs,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
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

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_records",
		Help:      "Number of engineered (year, track) records built from the reference tables",
	})

	m.trainingRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_rows",
		Help:      "Number of records with a known cutoff used to fit the model",
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_milliseconds",
		Help:      "Time spent building the dataset and fitting the tree",
		Buckets:   m.histogramBuckets,
	})

	m.treeDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tree_depth",
		Help:      "Depth of the fitted regression tree",
	})

	m.treeLeaves = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tree_leaves",
		Help:      "Number of leaves in the fitted regression tree",
	})

	m.forecastsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecasts_total",
		Help:      "Total number of forecasts produced",
	})

	m.suppressedTracks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suppressed_tracks_total",
		Help:      "Total number of track estimates overridden as not offered",
	})

	m.forecastLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecast_latency_milliseconds",
		Help:      "Latency of a full forecast across all tracks",
		Buckets:   m.histogramBuckets,
	})

	m.predictedEstimate = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predicted_cutoff",
			Help:      "Most recent point estimate per track (unset while suppressed)",
		},
		[]string{"track"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// UpdateDatasetRecords sets the number of engineered records.
func UpdateDatasetRecords(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetRecords.Set(float64(count))
}

// UpdateTrainingRows sets the number of training rows.
func UpdateTrainingRows(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.trainingRows.Set(float64(count))
}

// RecordTrainingDuration records dataset build plus fit time in milliseconds.
func RecordTrainingDuration(durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.trainingDuration.Observe(durationMs)
}

// UpdateTreeShape sets the depth and leaf count of the fitted tree.
func UpdateTreeShape(depth, leaves int) {
	if !globalManager.enabled {
		return
	}
	globalManager.treeDepth.Set(float64(depth))
	globalManager.treeLeaves.Set(float64(leaves))
}

// RecordForecast increments the forecast counter and observes its latency.
func RecordForecast(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.forecastsTotal.Inc()
	globalManager.forecastLatency.Observe(latencyMs)
}

// RecordSuppressedTrack increments the suppressed track counter.
func RecordSuppressedTrack() {
	if !globalManager.enabled {
		return
	}
	globalManager.suppressedTracks.Inc()
}

// UpdatePredictedCutoff sets the latest estimate for a track.
func UpdatePredictedCutoff(track string, estimate float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.predictedEstimate.WithLabelValues(track).Set(estimate)
}

// ClearPredictedCutoff removes the estimate series for a suppressed track.
func ClearPredictedCutoff(track string) {
	if !globalManager.enabled {
		return
	}
	globalManager.predictedEstimate.DeleteLabelValues(track)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
