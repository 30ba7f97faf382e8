package vango

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/store/internal/errors"
)

// DebugMode enables dev-time validation such as hook order checking.
// Set it at startup; it is not safe to toggle while components render.
var DebugMode bool

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookReducer HookType = iota + 1
	HookMount
	HookStore
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookReducer:
		return "Reducer"
	case HookMount:
		return "Mount"
	case HookStore:
		return "Store"
	default:
		return "Unknown"
	}
}

// Owner represents a component scope. It keeps hook state stable across
// renders, queues mount callbacks until after render, and runs cleanups when
// disposed. Owners form a tree that mirrors the component tree.
type Owner struct {
	id uint64

	// parent is nil for the root Owner (the runtime).
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	// cleanups are registered via OnCleanup and run in reverse order.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// pendingEffects are mount callbacks scheduled to run after render.
	pendingEffects   []func()
	pendingEffectsMu sync.Mutex

	disposed atomic.Bool

	// Dev-mode hook order tracking (only used when DebugMode is true).
	hookOrder   []HookType
	hookIndex   int
	renderCount int

	// Hook slot storage for stable identity across renders.
	hookSlots   []any
	hookSlotIdx int
}

// NewOwner creates a new Owner registered as a child of parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) snapshotChildren() []*Owner {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	return append([]*Owner(nil), o.children...)
}

// OnCleanup registers a cleanup function to run when this Owner is disposed.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		// Already disposed, run cleanup immediately
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// scheduleEffect queues fn to run on the next RunPendingEffects.
func (o *Owner) scheduleEffect(fn func()) {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	defer o.pendingEffectsMu.Unlock()
	o.pendingEffects = append(o.pendingEffects, fn)
}

// RunPendingEffects runs the queued mount callbacks of this owner and then
// of its children, in creation order. Callbacks queued while running are
// left for the next call. It returns the number of callbacks run.
func (o *Owner) RunPendingEffects() int {
	if o.disposed.Load() {
		return 0
	}

	o.pendingEffectsMu.Lock()
	effects := o.pendingEffects
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	ran := 0
	for _, fn := range effects {
		if o.disposed.Load() {
			break
		}
		fn()
		ran++
	}

	for _, child := range o.snapshotChildren() {
		ran += child.RunPendingEffects()
	}
	return ran
}

// HasPendingEffects returns true if this owner or any child has queued
// mount callbacks.
func (o *Owner) HasPendingEffects() bool {
	if o.disposed.Load() {
		return false
	}

	o.pendingEffectsMu.Lock()
	hasPending := len(o.pendingEffects) > 0
	o.pendingEffectsMu.Unlock()

	if hasPending {
		return true
	}

	for _, child := range o.snapshotChildren() {
		if child.HasPendingEffects() {
			return true
		}
	}
	return false
}

// Dispose disposes this Owner and all its children. Children are disposed
// last-created first, then this owner's cleanups run in reverse order.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.pendingEffectsMu.Lock()
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()
}

// =============================================================================
// Render Phase and Hook Order Validation
// =============================================================================

// StartRender is called at the beginning of a component render.
// It resets the hook slot index, and in debug mode the order index.
func (o *Owner) StartRender() {
	beginRender()
	o.hookSlotIdx = 0
	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a component render.
// In debug mode, it validates that all expected hooks were called.
func (o *Owner) EndRender() {
	endRender()

	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(errors.New("E005").WithDetailf(
			"expected %d hooks, got %d", len(o.hookOrder), o.hookIndex))
	}
}

// TrackHook records a hook call during render. In debug mode, hooks must be
// called in the same order on every render; violations panic with E005.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		o.hookOrder = append(o.hookOrder, ht)
		o.hookIndex++
		return
	}

	if o.hookIndex >= len(o.hookOrder) {
		panic(errors.New("E005").WithDetailf("extra %s hook at index %d", ht, o.hookIndex))
	}
	if expected := o.hookOrder[o.hookIndex]; expected != ht {
		panic(errors.New("E005").WithDetail(fmt.Sprintf(
			"at index %d: expected %s, got %s", o.hookIndex, expected, ht)))
	}
	o.hookIndex++
}

// =============================================================================
// Hook Slot Storage for Stable Identity
// =============================================================================

// UseHookSlot returns the stored value for the current hook slot, or nil on
// first render.
//
// Usage pattern:
//
//	slot := owner.UseHookSlot()
//	if slot != nil {
//	    return slot.(*state)
//	}
//	st := &state{}
//	owner.SetHookSlot(st)
//	return st
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil.
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}
