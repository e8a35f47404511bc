// Package metrics provides Prometheus metrics for the gazeboard pipeline.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Openness ratios cluster between 0 and 0.5; the blink threshold is 0.2.
var opennessBuckets = []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.35, 0.4, 0.5, 0.75} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the gazeboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Frame intake
	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec

	// Pipeline
	ticks           prometheus.Counter
	tickLatency     prometheus.Histogram
	missingFaces    prometheus.Counter
	gazeDirections  *prometheus.CounterVec
	blinks          prometheus.Counter
	eyeOpenness     prometheus.Histogram
	degenerateEyes  *prometheus.CounterVec
	pipelineErrors  *prometheus.CounterVec
	selections      *prometheus.CounterVec
	suppressed      prometheus.Counter
	unlocks         prometheus.Counter
	lockActive      prometheus.Gauge
	categorySwitch  *prometheus.CounterVec
	sinkDropped     *prometheus.CounterVec
	streamClients   prometheus.Gauge
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueUtil       prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueDequeued   prometheus.Counter
	queueSuperseded prometheus.Counter

	// Selection history
	historyRecords prometheus.Gauge
	historyEvicted prometheus.Counter
	historyLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "gazeboard",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// A disabled manager still records, but onto a registry nobody serves.
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often gauge updaters should sample.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.framesReceived = auto.NewCounterVec(m.counterOpts("frames_received_total", "Landmark frames accepted by source"), []string{"source"})
	m.framesDropped = auto.NewCounterVec(m.counterOpts("frames_dropped_total", "Landmark frames dropped before processing"), []string{"reason"})

	m.ticks = auto.NewCounter(m.counterOpts("ticks_total", "Polling ticks run"))
	m.tickLatency = auto.NewHistogram(m.histogramOpts("tick_latency_milliseconds", "Time spent processing one tick", m.histogramBuckets))
	m.missingFaces = auto.NewCounter(m.counterOpts("missing_faces_total", "Ticks whose frame contained no face"))
	m.gazeDirections = auto.NewCounterVec(m.counterOpts("gaze_direction_total", "Classified gaze directions"), []string{"direction"})
	m.blinks = auto.NewCounter(m.counterOpts("blinks_total", "Frames classified as blinking"))
	m.eyeOpenness = auto.NewHistogram(m.histogramOpts("eye_openness_ratio", "Average eye openness ratio per frame", opennessBuckets))
	m.degenerateEyes = auto.NewCounterVec(m.counterOpts("degenerate_eyes_total", "Eyes excluded for degenerate geometry"), []string{"eye"})
	m.pipelineErrors = auto.NewCounterVec(m.counterOpts("errors_total", "Pipeline failures by kind"), []string{"kind"})
	m.selections = auto.NewCounterVec(m.counterOpts("selections_total", "Selection events emitted"), []string{"direction"})
	m.suppressed = auto.NewCounter(m.counterOpts("suppressed_triggers_total", "Blink triggers ignored while locked"))
	m.unlocks = auto.NewCounter(m.counterOpts("unlocks_total", "Selection locks that expired"))
	m.lockActive = auto.NewGauge(m.gaugeOpts("lock_active", "1 while a selection lock is held"))
	m.categorySwitch = auto.NewCounterVec(m.counterOpts("category_switches_total", "Active category changes"), []string{"category"})
	m.sinkDropped = auto.NewCounterVec(m.counterOpts("sink_dropped_total", "Messages dropped for slow subscribers"), []string{"type"})
	m.streamClients = auto.NewGauge(m.gaugeOpts("stream_clients", "Connected websocket clients"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Frames waiting in the source queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtil = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Frames enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Frames dequeued"))
	m.queueSuperseded = auto.NewCounter(m.counterOpts("queue_superseded_total", "Frames replaced by a newer frame within one tick"))

	m.historyRecords = auto.NewGauge(m.gaugeOpts("history_records", "Selection events held in the history store"))
	m.historyEvicted = auto.NewCounter(m.counterOpts("history_evicted_total", "Selection events evicted from a full history"))
	m.historyLatency = auto.NewHistogram(m.histogramOpts("history_query_latency_milliseconds", "History query latency in milliseconds", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordFrameReceived counts a frame accepted from source (http, ws).
func RecordFrameReceived(source string) {
	globalManager.framesReceived.WithLabelValues(source).Inc()
}

// RecordFrameDropped counts a frame dropped for reason.
func RecordFrameDropped(reason string) {
	globalManager.framesDropped.WithLabelValues(reason).Inc()
}

// RecordTick counts a tick and its latency in milliseconds.
func RecordTick(latencyMs float64) {
	globalManager.ticks.Inc()
	globalManager.tickLatency.Observe(latencyMs)
}

// RecordMissingFace counts a tick without a detected face.
func RecordMissingFace() {
	globalManager.missingFaces.Inc()
}

// RecordGaze counts a classified direction.
func RecordGaze(direction string) {
	globalManager.gazeDirections.WithLabelValues(direction).Inc()
}

// RecordBlink counts a blinking frame.
func RecordBlink() {
	globalManager.blinks.Inc()
}

// RecordEyeOpenness observes the combined openness ratio.
func RecordEyeOpenness(ratio float64) {
	globalManager.eyeOpenness.Observe(ratio)
}

// RecordDegenerateEye counts an eye excluded from the blink decision.
func RecordDegenerateEye(eye string) {
	globalManager.degenerateEyes.WithLabelValues(eye).Inc()
}

// RecordPipelineError counts a failed tick by error kind.
func RecordPipelineError(kind string) {
	globalManager.pipelineErrors.WithLabelValues(kind).Inc()
}

// RecordSelection counts an emitted selection and marks the lock active.
func RecordSelection(direction string) {
	globalManager.selections.WithLabelValues(direction).Inc()
	globalManager.lockActive.Set(1)
}

// RecordSuppressedTrigger counts a blink ignored while locked.
func RecordSuppressedTrigger() {
	globalManager.suppressed.Inc()
}

// RecordUnlock counts an expired lock and clears the lock gauge.
func RecordUnlock() {
	globalManager.unlocks.Inc()
	globalManager.lockActive.Set(0)
}

// RecordCategorySwitch counts a change of the active category.
func RecordCategorySwitch(category string) {
	globalManager.categorySwitch.WithLabelValues(category).Inc()
}

// RecordSinkDropped counts a message a slow subscriber missed.
func RecordSinkDropped(msgType string) {
	globalManager.sinkDropped.WithLabelValues(msgType).Inc()
}

// UpdateStreamClients sets the number of connected stream clients.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtil.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueSuperseded counts frames discarded in favour of a newer one.
func RecordQueueSuperseded(n int) {
	globalManager.queueSuperseded.Add(float64(n))
}

// History Metrics Functions.

// UpdateHistoryRecords sets the number of stored selection events.
func UpdateHistoryRecords(count int) {
	globalManager.historyRecords.Set(float64(count))
}

// RecordHistoryEvicted counts a selection event dropped to make room.
func RecordHistoryEvicted() {
	globalManager.historyEvicted.Inc()
}

// RecordHistoryQueryLatency records a history read latency.
func RecordHistoryQueryLatency(latencyMs float64) {
	globalManager.historyLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Totals sums every counter family in the registry whose fully qualified
// name is in names. Label dimensions are collapsed.
func Totals(g prometheus.Gatherer, names ...string) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrObserveFailed, err)
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make(map[string]float64, len(names))
	for _, mf := range families {
		if !want[mf.GetName()] {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				sum += metric.GetGauge().GetValue()
			}
		}
		out[mf.GetName()] = sum
	}
	return out, nil
}
