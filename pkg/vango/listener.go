package vango

// Listener is anything that can be told its rendered output is stale.
// Mounted component instances implement it.
type Listener interface {
	// MarkDirty schedules a re-render.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	ID() uint64
}

// Cleanup is a function run when an owner is disposed.
type Cleanup func()
