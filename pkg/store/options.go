package store

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// DefaultName labels stores created without the Name option.
const DefaultName = "store"

type options struct {
	name     string
	logger   *slog.Logger
	metrics  *Metrics
	tracer   tracer
	preserve bool
}

func defaultOptions() options {
	return options{
		name:   DefaultName,
		logger: slog.Default(),
		tracer: newTracer(nil),
	}
}

// Option configures a store.
type Option func(*options)

// Name labels the store in logs, metrics and spans.
func Name(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger used for store lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records store activity on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer for setup and update spans. By default the
// tracer comes from the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = newTracer(t)
	}
}

// PreserveOnRemount keeps existing data keys when a new consumer mounts.
// Setup still runs; only missing keys and action funcs are merged, so
// actions bind to the new consumer without resetting updated values.
func PreserveOnRemount() Option {
	return func(o *options) {
		o.preserve = true
	}
}
