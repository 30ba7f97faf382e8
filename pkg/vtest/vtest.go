package vtest

import (
	"testing"

	"github.com/vango-dev/store/pkg/vango"
)

// Harness mounts components into a runtime that is disposed when the test
// ends.
type Harness struct {
	t  testing.TB
	rt *vango.Runtime
}

// New creates a harness. Runtime options are passed through.
func New(t testing.TB, opts ...vango.RuntimeOption) *Harness {
	t.Helper()
	rt := vango.NewRuntime(opts...)
	t.Cleanup(rt.Dispose)
	return &Harness{t: t, rt: rt}
}

// Runtime returns the underlying runtime.
func (h *Harness) Runtime() *vango.Runtime {
	return h.rt
}

// Mount mounts render as a component and flushes the tree.
func (h *Harness) Mount(render func() any) *vango.Instance {
	h.t.Helper()
	inst := h.rt.Mount(vango.Func(render))
	h.Flush()
	return inst
}

// MountOnly mounts render without flushing, leaving mount callbacks queued.
func (h *Harness) MountOnly(render func() any) *vango.Instance {
	h.t.Helper()
	return h.rt.Mount(vango.Func(render))
}

// Flush flushes the runtime and fails the test on error.
func (h *Harness) Flush() {
	h.t.Helper()
	if err := h.rt.Flush(); err != nil {
		h.t.Fatalf("flush: %v", err)
	}
}

// Unmount unmounts inst.
func (h *Harness) Unmount(inst *vango.Instance) {
	h.rt.Unmount(inst)
}

// Last returns the value of inst's most recent render as V.
func Last[V any](t testing.TB, inst *vango.Instance) V {
	t.Helper()
	v, ok := inst.Last().(V)
	if !ok {
		var zero V
		t.Fatalf("last render returned %T, want %T", inst.Last(), zero)
	}
	return v
}

// ExpectRenders asserts that inst has rendered exactly n times.
func ExpectRenders(t testing.TB, inst *vango.Instance, n uint64) {
	t.Helper()
	if got := inst.Renders(); got != n {
		t.Errorf("instance %d rendered %d times, want %d", inst.ID(), got, n)
	}
}

// ExpectClean asserts that the harness has nothing left to flush.
func ExpectClean(t testing.TB, h *Harness) {
	t.Helper()
	if h.rt.Pending() {
		t.Error("runtime has pending renders or mount callbacks")
	}
}
