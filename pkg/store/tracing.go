package store

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used with the global provider.
const TracerName = "github.com/vango-dev/store"

type tracer struct {
	t trace.Tracer
}

func newTracer(t trace.Tracer) tracer {
	if t == nil {
		t = otel.Tracer(TracerName)
	}
	return tracer{t: t}
}

func (tr tracer) start(ctx context.Context, name, store string, instance uint64) (context.Context, span) {
	ctx, s := tr.t.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("vango.store", store),
			attribute.Int64("vango.instance", int64(instance)),
		),
	)
	return ctx, span{s: s}
}

type span struct {
	s trace.Span
}

func (sp span) setKeys(keys []string) {
	sp.s.SetAttributes(attribute.StringSlice("vango.store.keys", keys))
}

// end finishes the span. It must be deferred directly: a panic from setup or
// an updater is recorded on the span and then re-raised unchanged.
func (sp span) end() {
	if r := recover(); r != nil {
		sp.s.SetStatus(codes.Error, fmt.Sprint(r))
		sp.s.End()
		panic(r)
	}
	sp.s.End()
}
