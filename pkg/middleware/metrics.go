package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/weft-dev/weft/pkg/session"
	"github.com/weft-dev/weft/pkg/weft"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
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
		Namespace: "weft",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus instruments for request processing.
// One instance registers its instruments once; its Middleware can be
// installed on any number of sessions.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	dispatchErrors  *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetrics registers the instruments and returns the handle.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total requests processed, by request kind and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_errors_total",
			Help:        "Request processing errors by category",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns the session middleware recording these
// instruments.
func (m *Metrics) Middleware() session.Middleware {
	return func(next session.Handler) session.Handler {
		return func(ctx context.Context, req weft.Request) (weft.Response, error) {
			kind := requestKind(req)

			start := time.Now()
			resp, err := next(ctx, req)
			m.requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.dispatchErrors.WithLabelValues(categorizeError(err)).Inc()
			}
			m.requestsTotal.WithLabelValues(kind, status).Inc()

			return resp, err
		}
	}
}

// SessionStarted records a session coming alive.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionEnded records a session being swept or closed.
func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}

// Prometheus creates metrics middleware with its own instruments.
// Use NewMetrics directly when the session gauge should be shared
// with a server manager.
//
// Example:
//
//	s, err := session.New(root, store,
//	    session.WithMiddleware(middleware.Prometheus(
//	        middleware.WithNamespace("myapp"),
//	    )),
//	)
//
//	// Expose the metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) session.Middleware {
	return NewMetrics(opts...).Middleware()
}

// categorizeError maps an error to a bounded label value, keeping
// error messages out of label cardinality.
func categorizeError(err error) string {
	var (
		invalidPage *session.InvalidPageIDError
		multiple    *weft.MultipleActionCallbacksError
		duplicate   *weft.DuplicateActionCallbackError
		answer      *weft.InvalidAnswerError
		conf        *weft.ConfigurationError
	)
	switch {
	case errors.As(err, &invalidPage):
		return "invalid_page_id"
	case errors.As(err, &multiple):
		return "multiple_actions"
	case errors.As(err, &duplicate):
		return "duplicate_action"
	case errors.As(err, &answer):
		return "invalid_answer"
	case errors.As(err, &conf):
		return "configuration"
	case errors.Is(err, weft.ErrCallDuringInput), errors.Is(err, weft.ErrPendingCall):
		return "invalid_call"
	default:
		return "internal"
	}
}
