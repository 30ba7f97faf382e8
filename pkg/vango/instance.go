package vango

import (
	"sync/atomic"

	"github.com/vango-dev/store/internal/errors"
)

// Component is the interface for renderable components. The runtime treats
// the rendered value as opaque.
type Component interface {
	Render() any
}

// Func wraps a render function as a Component.
type Func func() any

// Render calls the wrapped function.
func (f Func) Render() any {
	return f()
}

// Instance is a mounted component with its owner and render state.
type Instance struct {
	id uint64

	component Component
	owner     *Owner
	runtime   *Runtime

	dirty   atomic.Bool
	renders atomic.Uint64

	// last is the value returned by the most recent render.
	last any
}

var _ Listener = (*Instance)(nil)

func newInstance(component Component, rt *Runtime) *Instance {
	var parent *Owner
	if rt != nil {
		parent = rt.root
	}
	return &Instance{
		id:        nextID(),
		component: component,
		owner:     NewOwner(parent),
		runtime:   rt,
	}
}

// ID returns the unique identifier for this instance.
func (c *Instance) ID() uint64 {
	return c.id
}

// Owner returns the instance's owner.
func (c *Instance) Owner() *Owner {
	return c.owner
}

// Render renders the component with this instance as the current owner and
// re-render target.
func (c *Instance) Render() any {
	if c.owner == nil || c.owner.IsDisposed() {
		panic(errors.New("E006"))
	}

	var out any
	WithOwner(c.owner, func() {
		c.owner.StartRender()
		defer c.owner.EndRender()

		WithListener(c, func() {
			out = c.component.Render()
		})
	})

	c.last = out
	c.renders.Add(1)
	return out
}

// MarkDirty marks the instance as needing re-render and queues it on its
// runtime.
func (c *Instance) MarkDirty() {
	if c.owner == nil || c.owner.IsDisposed() {
		return
	}
	if c.dirty.CompareAndSwap(false, true) && c.runtime != nil {
		c.runtime.schedule(c)
	}
}

// IsDirty returns whether the instance needs re-rendering.
func (c *Instance) IsDirty() bool {
	return c.dirty.Load()
}

// clearDirty clears the dirty flag.
func (c *Instance) clearDirty() {
	c.dirty.Store(false)
}

// Renders returns how many times the instance has rendered.
func (c *Instance) Renders() uint64 {
	return c.renders.Load()
}

// Last returns the value of the most recent render.
func (c *Instance) Last() any {
	return c.last
}

// Dispose unmounts the instance: its owner's cleanups run and pending mount
// callbacks are dropped.
func (c *Instance) Dispose() {
	if c.owner != nil {
		c.owner.Dispose()
	}
	c.clearDirty()
}
