package vango

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/store/internal/errors"
)

// DefaultRenderBudget is the number of flush passes allowed before Flush
// gives up with E003.
const DefaultRenderBudget = 100

// Runtime mounts components and drives the render loop.
type Runtime struct {
	root   *Owner
	budget int
	logger *slog.Logger

	mu        sync.Mutex
	instances []*Instance
	queue     []*Instance
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRenderBudget sets the maximum number of flush passes.
// Values below 1 keep the default.
func WithRenderBudget(passes int) RuntimeOption {
	return func(rt *Runtime) {
		if passes > 0 {
			rt.budget = passes
		}
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// NewRuntime creates a runtime with an empty component tree.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		root:   NewOwner(nil),
		budget: DefaultRenderBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Mount creates an instance for component and renders it once. Mount
// callbacks registered during that render run on the next Flush.
func (rt *Runtime) Mount(component Component) *Instance {
	inst := newInstance(component, rt)

	rt.mu.Lock()
	rt.instances = append(rt.instances, inst)
	rt.mu.Unlock()

	inst.Render()
	rt.logger.Debug("component mounted", "instance", inst.ID())
	return inst
}

// Unmount disposes inst and removes it from the runtime.
func (rt *Runtime) Unmount(inst *Instance) {
	rt.mu.Lock()
	for i, c := range rt.instances {
		if c == inst {
			rt.instances = append(rt.instances[:i], rt.instances[i+1:]...)
			break
		}
	}
	rt.mu.Unlock()

	inst.Dispose()
	rt.logger.Debug("component unmounted", "instance", inst.ID())
}

// Instances returns the mounted instances in mount order.
func (rt *Runtime) Instances() []*Instance {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]*Instance(nil), rt.instances...)
}

func (rt *Runtime) schedule(inst *Instance) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.queue = append(rt.queue, inst)
}

func (rt *Runtime) drain() []*Instance {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	q := rt.queue
	rt.queue = nil
	return q
}

// Pending reports whether a flush has work to do.
func (rt *Runtime) Pending() bool {
	rt.mu.Lock()
	queued := len(rt.queue) > 0
	rt.mu.Unlock()
	return queued || rt.root.HasPendingEffects()
}

// Flush commits the tree: it runs pending mount callbacks, then re-renders
// every dirty instance, and repeats until nothing is pending. Each repeat is
// one pass; exceeding the render budget returns E003 with work still queued.
func (rt *Runtime) Flush() error {
	for pass := 0; pass < rt.budget; pass++ {
		effects := rt.root.RunPendingEffects()

		rendered := 0
		for _, inst := range rt.drain() {
			if !inst.IsDirty() || inst.owner.IsDisposed() {
				continue
			}
			inst.clearDirty()
			inst.Render()
			rendered++
		}

		if effects == 0 && rendered == 0 && !rt.Pending() {
			return nil
		}
	}

	if !rt.Pending() {
		return nil
	}
	rt.logger.Warn("render budget exceeded", "passes", rt.budget)
	return errors.New("E003").WithDetailf(
		"still rendering after %d flush passes", rt.budget)
}

// Dispose unmounts every instance.
func (rt *Runtime) Dispose() {
	rt.mu.Lock()
	rt.instances = nil
	rt.queue = nil
	rt.mu.Unlock()
	rt.root.Dispose()
}
