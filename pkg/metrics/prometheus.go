// Package metrics provides Prometheus metrics for the word ring service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Contribution lifecycle
	wordsContributed prometheus.Counter
	wordsDeleted     prometheus.Counter
	duplicateTerms   prometheus.Counter
	visitorConflicts prometheus.Counter
	ringFull         prometheus.Counter

	// Ring state
	totalWords     prometheus.Gauge
	layerOccupancy *prometheus.GaugeVec

	// Reconciliation
	reconcilePasses      prometheus.Counter
	reconcileAssignments prometheus.Counter
	reconcileUnplaced    prometheus.Counter

	// Write-back pipeline
	writebackBatches       prometheus.Counter
	writebackFailures      prometheus.Counter
	writebackEnqueueErrors prometheus.Counter
	writebackLatency       prometheus.Histogram
	writebackQueueSize     prometheus.Gauge
	writebackQueueCapacity prometheus.Gauge
	writebackWorkerCount   prometheus.Gauge

	// Store performance
	storeQueryLatency prometheus.Histogram
	storeWriteLatency prometheus.Histogram

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roots",
		subsystem:        "ring",
		histogramBuckets: prometheus.DefBuckets,
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
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.wordsContributed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "words_contributed_total",
		Help:      "Total number of words accepted onto the ring",
	})

	m.wordsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "words_deleted_total",
		Help:      "Total number of words removed by their owners",
	})

	m.duplicateTerms = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_terms_total",
		Help:      "Total number of contributions rejected as duplicate terms",
	})

	m.visitorConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "visitor_conflicts_total",
		Help:      "Total number of contributions rejected because the visitor already has a word",
	})

	m.ringFull = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ring_full_rejections_total",
		Help:      "Total number of contributions rejected because every layer is full",
	})

	m.totalWords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_words",
		Help:      "Current number of live words on the ring",
	})

	m.layerOccupancy = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "layer_occupancy",
			Help:      "Number of claimed slots per layer",
		},
		[]string{"layer"},
	)

	m.reconcilePasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_passes_total",
		Help:      "Total number of reconciliation passes run",
	})

	m.reconcileAssignments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_assignments_total",
		Help:      "Total number of coordinates assigned by reconciliation",
	})

	m.reconcileUnplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_unplaced_total",
		Help:      "Total number of entries left without a slot by reconciliation",
	})

	m.writebackBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_batches_total",
		Help:      "Total number of write-back batches persisted",
	})

	m.writebackFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_failures_total",
		Help:      "Total number of write-back batches that failed to persist",
	})

	m.writebackEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_enqueue_errors_total",
		Help:      "Total number of write-back batches dropped at enqueue",
	})

	m.writebackLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_latency_milliseconds",
		Help:      "Write-back persistence latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.writebackQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_queue_size",
		Help:      "Current number of batches waiting in the write-back queue",
	})

	m.writebackQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_queue_capacity",
		Help:      "Configured capacity of the write-back queue",
	})

	m.writebackWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "writeback_worker_count",
		Help:      "Number of write-back workers",
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Record store read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Record store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

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

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total errors by endpoint, method, and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Contribution lifecycle helpers.

// RecordContribution increments the accepted-words counter.
func RecordContribution() { globalManager.wordsContributed.Inc() }

// RecordDeletion increments the deleted-words counter.
func RecordDeletion() { globalManager.wordsDeleted.Inc() }

// RecordDuplicateTerm increments the duplicate-term rejection counter.
func RecordDuplicateTerm() { globalManager.duplicateTerms.Inc() }

// RecordVisitorConflict increments the one-word-per-visitor rejection counter.
func RecordVisitorConflict() { globalManager.visitorConflicts.Inc() }

// RecordRingFull increments the ring-full rejection counter.
func RecordRingFull() { globalManager.ringFull.Inc() }

// Ring state helpers.

// UpdateTotalWords sets the live word count gauge.
func UpdateTotalWords(count int) { globalManager.totalWords.Set(float64(count)) }

// UpdateLayerOccupancy sets the claimed-slot gauge for one layer.
func UpdateLayerOccupancy(layer, count int) {
	globalManager.layerOccupancy.WithLabelValues(strconv.Itoa(layer)).Set(float64(count))
}

// Reconciliation helpers.

// RecordReconcilePass increments the pass counter.
func RecordReconcilePass() { globalManager.reconcilePasses.Inc() }

// RecordReconcileAssignments adds newly assigned coordinate count.
func RecordReconcileAssignments(n int) {
	globalManager.reconcileAssignments.Add(float64(n))
}

// RecordReconcileUnplaced adds the count of entries left without a slot.
func RecordReconcileUnplaced(n int) {
	globalManager.reconcileUnplaced.Add(float64(n))
}

// Write-back pipeline helpers.

// RecordWritebackBatch increments the persisted-batch counter.
func RecordWritebackBatch() { globalManager.writebackBatches.Inc() }

// RecordWritebackFailure increments the failed-batch counter.
func RecordWritebackFailure() { globalManager.writebackFailures.Inc() }

// RecordWritebackEnqueueError increments the dropped-batch counter.
func RecordWritebackEnqueueError() { globalManager.writebackEnqueueErrors.Inc() }

// RecordWritebackLatency observes one batch persistence duration.
func RecordWritebackLatency(latencyMs float64) {
	globalManager.writebackLatency.Observe(latencyMs)
}

// UpdateWritebackQueueSize sets the queue depth gauge.
func UpdateWritebackQueueSize(size int) {
	globalManager.writebackQueueSize.Set(float64(size))
}

// UpdateWritebackQueueCapacity sets the queue capacity gauge.
func UpdateWritebackQueueCapacity(capacity int) {
	globalManager.writebackQueueCapacity.Set(float64(capacity))
}

// UpdateWritebackWorkerCount sets the worker count gauge.
func UpdateWritebackWorkerCount(count int) {
	globalManager.writebackWorkerCount.Set(float64(count))
}

// Store helpers.

// RecordStoreQueryLatency observes one store read duration.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreWriteLatency observes one store write duration.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// HTTP helpers.

// RecordHTTPRequest counts one request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts one error on an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType counts one error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// Process health helpers.

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
