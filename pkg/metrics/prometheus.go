// Package metrics provides Prometheus metrics for the gamerec client runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector gamerec exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rating widget
	ratingsSubmitted *prometheus.CounterVec
	ratingLatency    prometheus.Histogram
	widgetsMounted   prometheus.Gauge

	// Client key-value store
	storeErrors *prometheus.CounterVec

	// Event bus
	notificationsPublished prometheus.Counter
	notificationsDelivered prometheus.Counter
	handlerPanics          prometheus.Counter
	subscribers            prometheus.Gauge

	// Recommendation panel
	panelRefetches    prometheus.Counter
	panelFetchErrors  prometheus.Counter
	panelItems        prometheus.Gauge
	panelFetchLatency prometheus.Histogram

	// Backend client
	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	breakerState           *prometheus.GaugeVec

	// HTTP adapter
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gamerec",
		subsystem:        "client",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

//nolint:funlen // one place for every collector
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ratingsSubmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_selections_total",
		Help:      "Rating selections by outcome (committed, failed, busy, anonymous, invalid, discarded)",
	}, []string{"outcome"})
	m.ratingLatency = m.histogram("rating_submit_latency_milliseconds", "Latency of remote rating submissions in milliseconds")
	m.widgetsMounted = m.gauge("widgets_mounted", "Number of currently mounted rating widgets")

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Client key-value store failures by operation",
	}, []string{"op"})

	m.notificationsPublished = m.counter("notifications_published_total", "Rating change notifications published")
	m.notificationsDelivered = m.counter("notifications_delivered_total", "Rating change notifications delivered to handlers")
	m.handlerPanics = m.counter("notification_handler_panics_total", "Notification handlers that panicked")
	m.subscribers = m.gauge("notification_subscribers", "Live notification subscriptions")

	m.panelRefetches = m.counter("panel_fetches_total", "Recommendation panel fetches issued")
	m.panelFetchErrors = m.counter("panel_fetch_errors_total", "Recommendation panel fetches that failed")
	m.panelItems = m.gauge("panel_items", "Items currently shown by the recommendation panel")
	m.panelFetchLatency = m.histogram("panel_fetch_latency_milliseconds", "Recommendation fetch latency in milliseconds")

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_requests_total",
		Help:      "Requests sent to the remote API by endpoint and status",
	}, []string{"endpoint", "method", "status"})
	m.backendRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_request_duration_milliseconds",
		Help:      "Remote API request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// Rating widget.

// RecordRatingOutcome counts one Select call by its outcome label.
func RecordRatingOutcome(outcome string) {
	globalManager.ratingsSubmitted.WithLabelValues(outcome).Inc()
}

// RecordRatingLatency records the remote submission latency.
func RecordRatingLatency(latencyMs float64) {
	globalManager.ratingLatency.Observe(latencyMs)
}

// AddMountedWidgets adjusts the mounted widget gauge by delta.
func AddMountedWidgets(delta int) {
	globalManager.widgetsMounted.Add(float64(delta))
}

// Client key-value store.

// RecordStoreError counts a failed store operation ("get", "set", "delete").
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// Event bus.

// RecordNotificationPublished counts one published notification.
func RecordNotificationPublished() {
	globalManager.notificationsPublished.Inc()
}

// RecordNotificationDelivered counts one handler invocation.
func RecordNotificationDelivered() {
	globalManager.notificationsDelivered.Inc()
}

// RecordHandlerPanic counts a recovered handler panic.
func RecordHandlerPanic() {
	globalManager.handlerPanics.Inc()
}

// UpdateSubscribers sets the live subscription gauge.
func UpdateSubscribers(count int) {
	globalManager.subscribers.Set(float64(count))
}

// Recommendation panel.

// RecordPanelFetch counts a recommendation fetch and its latency.
func RecordPanelFetch(latencyMs float64, err error) {
	globalManager.panelRefetches.Inc()
	globalManager.panelFetchLatency.Observe(latencyMs)
	if err != nil {
		globalManager.panelFetchErrors.Inc()
	}
}

// UpdatePanelItems sets the number of shown recommendations.
func UpdatePanelItems(count int) {
	globalManager.panelItems.Set(float64(count))
}

// Backend client.

// RecordBackendRequest records one remote API call.
func RecordBackendRequest(endpoint, method, status string, durationMs float64) {
	globalManager.backendRequests.WithLabelValues(endpoint, method, status).Inc()
	globalManager.backendRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// UpdateBreakerState sets the breaker gauge for name.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// HTTP adapter.

// RecordHTTPRequest records a request count by endpoint, method, and status code.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
