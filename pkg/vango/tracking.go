package vango

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// globalIDCounter is the source of unique IDs for owners and instances.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// TrackingContext holds the render state for a goroutine.
type TrackingContext struct {
	// currentOwner is the Owner of the component being rendered.
	currentOwner *Owner

	// currentListener is the instance being rendered; hooks capture it as
	// their re-render target.
	currentListener Listener

	// rendering is the render nesting depth.
	rendering int
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns the current goroutine's ID parsed from its stack
// header ("goroutine <id> ...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it on first use.
func getTrackingContext() *TrackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext)
	}

	ctx := &TrackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// lookupTrackingContext returns the current goroutine's context without
// creating one.
func lookupTrackingContext() *TrackingContext {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*TrackingContext)
	}
	return nil
}

// cleanupGoroutineContext removes the tracking context for the current
// goroutine.
func cleanupGoroutineContext() {
	trackingContexts.Delete(getGoroutineID())
}

// releaseIfIdle drops ctx once nothing is rendering and no owner or
// listener is set, so goroutines that rendered once leave no entry behind.
func releaseIfIdle(ctx *TrackingContext) {
	if ctx.currentOwner == nil && ctx.currentListener == nil && ctx.rendering == 0 {
		cleanupGoroutineContext()
	}
}

// CurrentOwner returns the Owner of the component rendering on this
// goroutine, or nil outside render.
func CurrentOwner() *Owner {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentOwner
	}
	return nil
}

// CurrentListener returns the instance rendering on this goroutine, or nil.
func CurrentListener() Listener {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentListener
	}
	return nil
}

func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	releaseIfIdle(ctx)
	return old
}

func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	releaseIfIdle(ctx)
	return old
}

func beginRender() {
	getTrackingContext().rendering++
}

func endRender() {
	ctx := lookupTrackingContext()
	if ctx == nil {
		return
	}
	if ctx.rendering > 0 {
		ctx.rendering--
	}
	releaseIfIdle(ctx)
}

// IsRendering reports whether a component render is in progress on this
// goroutine.
func IsRendering() bool {
	ctx := lookupTrackingContext()
	return ctx != nil && ctx.rendering > 0
}

// WithOwner runs fn with owner as the current owner.
//
// Example:
//
//	go func() {
//	    vango.WithOwner(parentOwner, func() {
//	        vango.OnUnmount(stopPolling)
//	    })
//	}()
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with l as the current re-render target.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}
