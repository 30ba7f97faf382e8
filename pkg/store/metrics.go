package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures store metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vango").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures store metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem replaces the "store" part of the metric names. An empty
// subsystem drops it: <namespace>_updates_total.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels attaches fixed labels (deployment, region) to every store
// series. The "store" label is reserved.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		if len(labels) > 0 {
			c.ConstLabels = labels
		}
	}
}

// WithBuckets sets the update duration histogram buckets in seconds. An
// empty slice keeps the defaults, which are tuned for in-memory merges.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		if len(buckets) > 0 {
			c.Buckets = buckets
		}
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
		Namespace: "vango",
		Subsystem: "store",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for stores. One Metrics can be
// shared by many stores; series are labeled by store name.
//
// Metrics collected:
//   - vango_store_updates_total: setter calls by store
//   - vango_store_update_duration_seconds: time spent in a setter by store
//   - vango_store_mounts_total: consumer mounts (setup reruns) by store
//   - vango_store_forced_renders_total: re-renders requested by store
//   - vango_store_keys: number of keys in the shared state by store
type Metrics struct {
	updatesTotal   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	mountsTotal    *prometheus.CounterVec
	forcedRenders  *prometheus.CounterVec
	keys           *prometheus.GaugeVec
}

// NewMetrics registers the store collectors.
//
// Example:
//
//	m := store.NewMetrics(store.WithNamespace("myapp"))
//	var useCart = store.Create(setupCart, store.Name("cart"), store.WithMetrics(m))
//
//	http.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	labels := []string{"store"}

	return &Metrics{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of store updates applied",
			ConstLabels: config.ConstLabels,
		}, labels),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_duration_seconds",
			Help:        "Time spent applying a store update in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels),

		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of store consumers mounted",
			ConstLabels: config.ConstLabels,
		}, labels),

		forcedRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "forced_renders_total",
			Help:        "Total number of component re-renders requested by stores",
			ConstLabels: config.ConstLabels,
		}, labels),

		keys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "keys",
			Help:        "Number of keys in the shared store state",
			ConstLabels: config.ConstLabels,
		}, labels),
	}
}

func (m *Metrics) observeUpdate(store string, d time.Duration, keys int) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(store).Inc()
	m.updateDuration.WithLabelValues(store).Observe(d.Seconds())
	m.forcedRenders.WithLabelValues(store).Inc()
	m.keys.WithLabelValues(store).Set(float64(keys))
}

func (m *Metrics) observeMount(store string, keys int) {
	if m == nil {
		return
	}
	m.mountsTotal.WithLabelValues(store).Inc()
	m.forcedRenders.WithLabelValues(store).Inc()
	m.keys.WithLabelValues(store).Set(float64(keys))
}

func (m *Metrics) observeKeys(store string, keys int) {
	if m == nil {
		return
	}
	m.keys.WithLabelValues(store).Set(float64(keys))
}
