package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/newsletter/pkg/subscribe"
)

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "newsletter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for submission duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "newsletter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder holds the form and live-session metrics.
type Recorder struct {
	submissionsStarted prometheus.Counter
	submissionsTotal   *prometheus.CounterVec
	submitDuration     *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	duplicateSubmits   prometheus.Counter
	activeSessions     prometheus.Gauge
	wsErrors           *prometheus.CounterVec
}

var _ subscribe.Recorder = (*Recorder)(nil)

// New registers the metrics and returns a Recorder. It panics if the metrics
// are already registered with the chosen registry.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)

	return &Recorder{
		submissionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submissions_started_total",
			Help:        "Total number of valid submissions handed to the submitter",
			ConstLabels: config.ConstLabels,
		}),

		submissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submissions_total",
			Help:        "Total number of finished submissions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		submitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submit_duration_seconds",
			Help:        "Submitter call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "validation_failures_total",
			Help:        "Total number of rejected submit attempts per invalid field",
			ConstLabels: config.ConstLabels,
		}, []string{"field"}),

		duplicateSubmits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "duplicate_submits_total",
			Help:        "Total number of submit attempts ignored while a submission was pending",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected live form sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total number of WebSocket errors",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),
	}
}

// SubmitStarted implements subscribe.Recorder.
func (r *Recorder) SubmitStarted() {
	r.submissionsStarted.Inc()
}

// SubmitFinished implements subscribe.Recorder.
func (r *Recorder) SubmitFinished(outcome subscribe.Outcome, elapsed time.Duration) {
	r.submissionsTotal.WithLabelValues(string(outcome)).Inc()
	r.submitDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// ValidationFailed implements subscribe.Recorder.
func (r *Recorder) ValidationFailed(field subscribe.Field) {
	r.validationFailures.WithLabelValues(string(field)).Inc()
}

// DuplicateDropped implements subscribe.Recorder.
func (r *Recorder) DuplicateDropped() {
	r.duplicateSubmits.Inc()
}

// SessionOpened records a new live session.
func (r *Recorder) SessionOpened() {
	r.activeSessions.Inc()
}

// SessionClosed records the end of a live session.
func (r *Recorder) SessionClosed() {
	r.activeSessions.Dec()
}

// WebSocketError records a WebSocket failure of the given kind, such as
// "read", "write" or "decode".
func (r *Recorder) WebSocketError(kind string) {
	r.wsErrors.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
// A nil g serves prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
