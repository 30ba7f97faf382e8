package store

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/store/pkg/vango"
)

func counterSetup(set Setter) State {
	return State{
		"count": 0,
		"increment": func() {
			set(func(s State) State {
				return State{"count": Get[int](s, "count") + 1}
			})
		},
	}
}

// mountAndFlush mounts a consumer of h and commits the tree.
func mountAndFlush(t *testing.T, rt *vango.Runtime, h *Hook) *vango.Instance {
	t.Helper()
	inst := rt.Mount(vango.Func(func() any { return h.Use() }))
	if err := rt.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return inst
}

func TestMetricsRecordMountsAndUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	h := Create(counterSetup, Name("counter"), WithMetrics(m))
	if got := testutil.ToFloat64(m.keys.WithLabelValues("counter")); got != 2 {
		t.Errorf("keys = %v, want 2", got)
	}

	rt := vango.NewRuntime()
	defer rt.Dispose()
	mountAndFlush(t, rt, h)

	Action(h.Snapshot(), "increment")()
	Action(h.Snapshot(), "increment")()
	if err := rt.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.mountsTotal.WithLabelValues("counter")); got != 1 {
		t.Errorf("mounts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.updatesTotal.WithLabelValues("counter")); got != 2 {
		t.Errorf("updates = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.forcedRenders.WithLabelValues("counter")); got != 3 {
		t.Errorf("forced renders = %v, want 3", got)
	}

	n, err := testutil.GatherAndCount(reg, "test_store_update_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("update duration series = %d, want 1", n)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.observeUpdate("x", 0, 1)
	m.observeMount("x", 1)
	m.observeKeys("x", 1)
}

func TestTracingSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	h := Create(counterSetup, Name("traced"), WithTracer(tp.Tracer("test")))

	rt := vango.NewRuntime()
	defer rt.Dispose()
	mountAndFlush(t, rt, h)
	Action(h.Snapshot(), "increment")()

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	want := []string{"store.setup", "store.setup", "store.update"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("spans = %v, want %v", names, want)
	}

	update := sr.Ended()[2]
	var keys []string
	for _, kv := range update.Attributes() {
		if kv.Key == "vango.store.keys" {
			keys = kv.Value.AsStringSlice()
		}
	}
	if len(keys) != 1 || keys[0] != "count" {
		t.Errorf("update keys attribute = %v, want [count]", keys)
	}
}

func TestTracingRecordsPanic(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	func() {
		defer func() {
			if r := recover(); r != "bad setup" {
				t.Errorf("recovered %#v, want bad setup", r)
			}
		}()
		Create(func(Setter) State { panic("bad setup") }, WithTracer(tp.Tracer("test")))
	}()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "bad setup" {
		t.Errorf("status description = %q", spans[0].Status().Description)
	}
}

func TestLoggerReceivesLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := Create(counterSetup, Name("logged"), WithLogger(logger))

	rt := vango.NewRuntime()
	defer rt.Dispose()
	mountAndFlush(t, rt, h)
	Action(h.Snapshot(), "increment")()

	out := buf.String()
	for _, want := range []string{
		`msg="store created" store=logged`,
		`msg="store consumer mounted" store=logged`,
		`msg="store updated" store=logged`,
		`keys=[count]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRebindKeepsDataReplacesFuncs(t *testing.T) {
	oldFn := func() {}
	s := newShared(State{"count": 3, "inc": oldFn})

	marker := 0
	s.rebind(State{"count": 0, "inc": func() { marker = 1 }, "new": "v"})

	if Get[int](s.Read(), "count") != 3 {
		t.Errorf("count = %v, want 3", s.Read()["count"])
	}
	if Get[string](s.Read(), "new") != "v" {
		t.Error("missing key was not added")
	}
	Action(s.Read(), "inc")()
	if marker != 1 {
		t.Error("func key was not rebound")
	}
}

func TestNewSharedNilInitial(t *testing.T) {
	s := newShared(nil)
	s.Update(State{"a": 1})
	if s.len() != 1 {
		t.Errorf("len = %d, want 1", s.len())
	}
}

func TestMetricsOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("cart"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.001, 0.01, 1}),
	)
	m.observeUpdate("cart", time.Millisecond, 2)

	expected := `
# HELP app_cart_updates_total Total number of store updates applied
# TYPE app_cart_updates_total counter
app_cart_updates_total{env="test",store="cart"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_cart_updates_total"); err != nil {
		t.Error(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() == "app_cart_update_duration_seconds" {
			if got := len(f.GetMetric()[0].GetHistogram().GetBucket()); got != 3 {
				t.Errorf("buckets = %d, want 3", got)
			}
		}
	}
}

func TestMetricsEmptyOptionsKeepDefaults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem(""),
		WithConstLabels(nil),
		WithBuckets(nil),
	)
	m.observeUpdate("cart", time.Millisecond, 2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	want := len(defaultMetricsConfig().Buckets)
	found := false
	for _, f := range families {
		if f.GetName() == "app_update_duration_seconds" {
			found = true
			if got := len(f.GetMetric()[0].GetHistogram().GetBucket()); got != want {
				t.Errorf("buckets = %d, want default %d", got, want)
			}
			if got := len(f.GetMetric()[0].GetLabel()); got != 1 {
				t.Errorf("labels = %d, want only store", got)
			}
		}
	}
	if !found {
		t.Error("empty subsystem should drop it from the metric name")
	}
}
