package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/mall/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mall").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "mall",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// unmatchedRoute labels navigations that found no route, so arbitrary
// paths never become label values.
const unmatchedRoute = "(unmatched)"

type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	viewLoadsTotal     *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	messagesTotal      *prometheus.CounterVec
	wsErrors           *prometheus.CounterVec
}

// globalMetrics is created on the first call to Prometheus.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Time from navigation start to mount in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		viewLoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_loads_total",
			Help:        "Deferred view loads triggered by navigations",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "result"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_messages_total",
			Help:        "WebSocket navigation messages received by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// navigations.
//
// Metrics collected:
//   - mall_navigations_total: Counter of navigations by route and outcome
//   - mall_navigation_duration_seconds: Histogram of time to mount
//   - mall_view_loads_total: Counter of deferred view loads by result
//   - mall_active_sessions: Gauge of open WebSocket sessions
//   - mall_websocket_messages_total: Counter of received messages
//   - mall_websocket_errors_total: Counter of WebSocket errors
//
// The metrics are registered once per process; options passed to later
// calls are ignored.
//
// Example:
//
//	r.Use(middleware.Prometheus(middleware.WithNamespace("shop")))
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return router.MiddlewareFunc(func(nav *router.Navigation, next func() error) error {
		name := routeLabel(nav)
		cold := nav.To.Matched() && nav.To.Route.Component.IsLazy() && !nav.To.Route.Component.Loaded()

		start := time.Now()
		err := next()

		outcome := categorizeError(err)
		if err == nil {
			m.navigationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
		m.navigationsTotal.WithLabelValues(name, outcome).Inc()

		if cold {
			switch {
			case nav.To.Route.Component.Loaded():
				m.viewLoadsTotal.WithLabelValues(name, "ok").Inc()
			case errors.Is(err, router.ErrLoadFailed):
				m.viewLoadsTotal.WithLabelValues(name, "error").Inc()
			}
		}

		return err
	})
}

func routeLabel(nav *router.Navigation) string {
	if !nav.To.Matched() {
		return unmatchedRoute
	}
	return nav.To.Name
}

// categorizeError maps a navigation error onto a fixed outcome label.
func categorizeError(err error) string {
	switch {
	case err == nil:
		return "mounted"
	case errors.Is(err, router.ErrUnresolved):
		return "unresolved"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, router.ErrLoadFailed):
		return "load_failed"
	default:
		return "error"
	}
}

// RecordSessionOpen records a new WebSocket session.
func RecordSessionOpen() {
	if m := current(); m != nil {
		m.activeSessions.Inc()
	}
}

// RecordSessionClose records a WebSocket session ending.
func RecordSessionClose() {
	if m := current(); m != nil {
		m.activeSessions.Dec()
	}
}

// RecordMessage records a received WebSocket message of the given type.
func RecordMessage(msgType string) {
	if m := current(); m != nil {
		m.messagesTotal.WithLabelValues(msgType).Inc()
	}
}

// RecordWebSocketError records a WebSocket error.
func RecordWebSocketError(errorType string) {
	if m := current(); m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// Collector exposes the registered metrics for custom collection.
type Collector struct {
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration *prometheus.HistogramVec
	ViewLoadsTotal     *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	MessagesTotal      *prometheus.CounterVec
	WebSocketErrors    *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	m := current()
	if m == nil {
		return nil
	}
	return &Collector{
		NavigationsTotal:   m.navigationsTotal,
		NavigationDuration: m.navigationDuration,
		ViewLoadsTotal:     m.viewLoadsTotal,
		ActiveSessions:     m.activeSessions,
		MessagesTotal:      m.messagesTotal,
		WebSocketErrors:    m.wsErrors,
	}
}
