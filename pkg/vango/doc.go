// Package vango provides the component runtime that store hooks plug into.
//
// A mounted component is an Instance. Each Instance owns an Owner, the scope
// that keeps hook state stable across renders, queues mount callbacks until
// after the render that registered them, and runs cleanups on unmount.
//
// # Hooks
//
// Hooks are plain functions called during render. They locate the rendering
// component through the goroutine's tracking context:
//
//	func Counter() vango.Component {
//	    return vango.Func(func() any {
//	        n, bump := vango.UseReducer(func(c int) int { return c + 1 }, 0)
//	        vango.OnMount(func() { fmt.Println("mounted") })
//	        return fmt.Sprintf("clicked %d times (%p)", n, bump)
//	    })
//	}
//
// UseReducer is the re-render primitive: its dispatch function advances the
// per-instance counter and marks the instance dirty. OnMount registers a
// callback that runs once, after the first render has been committed.
//
// # Runtime
//
// Runtime mounts components and drives the render loop:
//
//	rt := vango.NewRuntime()
//	inst := rt.Mount(Counter())
//	if err := rt.Flush(); err != nil {
//	    log.Fatal(err)
//	}
//
// Flush runs pending mount callbacks and re-renders dirty instances until the
// tree is quiet, or fails with E003 once the render budget is spent.
//
// # Thread Safety
//
// Instances may be marked dirty from any goroutine. Rendering and Flush are
// expected to run on one goroutine at a time; the tracking context is
// per-goroutine, so work spawned from a render must use WithOwner to attach
// to a component.
package vango
