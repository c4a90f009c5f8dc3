package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weave").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry receives the collectors. Default: a fresh registry, so
	// several runtimes in one process never collide.
	Registry *prometheus.Registry
}

// MetricsOption configures the Prometheus collectors.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weave",
	}
}

// Metrics holds the runtime's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	nodesCreated     *prometheus.CounterVec
	regionRenders    *prometheus.CounterVec
	setupFailures    *prometheus.CounterVec
	hotUpdates       prometheus.Counter
	hotRebinds       prometheus.Counter
	hotInvalidations prometheus.Counter
	devClients       prometheus.Gauge
	devBroadcasts    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		nodesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_created_total",
			Help:        "Total number of backend nodes created",
			ConstLabels: config.ConstLabels,
		}, []string{"renderer", "kind"}),

		regionRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "region_renders_total",
			Help:        "Total number of control-flow region renders",
			ConstLabels: config.ConstLabels,
		}, []string{"renderer"}),

		setupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "extension_setup_failures_total",
			Help:        "Total number of failed extension setup hooks",
			ConstLabels: config.ConstLabels,
		}, []string{"renderer", "extension"}),

		hotUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hot_updates_total",
			Help:        "Total number of hot module updates applied",
			ConstLabels: config.ConstLabels,
		}),

		hotRebinds: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hot_rebinds_total",
			Help:        "Total number of component implementations rebound",
			ConstLabels: config.ConstLabels,
		}),

		hotInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hot_invalidations_total",
			Help:        "Total number of hot updates that required a full reload",
			ConstLabels: config.ConstLabels,
		}),

		devClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dev_clients",
			Help:        "Number of connected dev reload clients",
			ConstLabels: config.ConstLabels,
		}),

		devBroadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dev_broadcasts_total",
			Help:        "Total dev channel messages broadcast by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// =============================================================================
// Recording
// =============================================================================

// NodeCreated records a backend node of the given kind.
func (m *Metrics) NodeCreated(renderer, kind string) {
	if m != nil {
		m.nodesCreated.WithLabelValues(renderer, kind).Inc()
	}
}

// RegionRendered records one region (re-)render.
func (m *Metrics) RegionRendered(renderer string) {
	if m != nil {
		m.regionRenders.WithLabelValues(renderer).Inc()
	}
}

// SetupFailed records a failed extension setup hook.
func (m *Metrics) SetupFailed(renderer, extension string) {
	if m != nil {
		m.setupFailures.WithLabelValues(renderer, extension).Inc()
	}
}

// HotUpdate records an applied hot update.
func (m *Metrics) HotUpdate() {
	if m != nil {
		m.hotUpdates.Inc()
	}
}

// HotRebind records a rebound component.
func (m *Metrics) HotRebind() {
	if m != nil {
		m.hotRebinds.Inc()
	}
}

// HotInvalidation records an invalidated hot update.
func (m *Metrics) HotInvalidation() {
	if m != nil {
		m.hotInvalidations.Inc()
	}
}

// DevClientConnected records a new dev channel client.
func (m *Metrics) DevClientConnected() {
	if m != nil {
		m.devClients.Inc()
	}
}

// DevClientDisconnected records a dev channel client leaving.
func (m *Metrics) DevClientDisconnected() {
	if m != nil {
		m.devClients.Dec()
	}
}

// DevBroadcast records a message broadcast on the dev channel.
func (m *Metrics) DevBroadcast(msgType string) {
	if m != nil {
		m.devBroadcasts.WithLabelValues(msgType).Inc()
	}
}
