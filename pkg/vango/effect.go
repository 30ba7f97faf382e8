package vango

import "github.com/vango-dev/store/internal/errors"

// mountSlot marks that a component's OnMount callback has been queued.
type mountSlot struct {
	scheduled bool
}

// OnMount registers fn to run once after the component's first render has
// been committed. Later renders leave the callback alone. fn runs on the next
// Runtime.Flush (or Owner.RunPendingEffects).
//
// Example:
//
//	vango.OnMount(func() {
//	    fmt.Println("Component mounted")
//	})
func OnMount(fn func()) {
	owner := mustOwner("OnMount")
	owner.TrackHook(HookMount)

	if slot := owner.UseHookSlot(); slot != nil {
		if _, ok := slot.(*mountSlot); !ok {
			panic(errors.New("E007").WithDetailf("OnMount found %T in its hook slot", slot))
		}
		return
	}

	owner.SetHookSlot(&mountSlot{scheduled: true})
	owner.scheduleEffect(fn)
}

// OnUnmount registers fn to run when the current component is disposed.
func OnUnmount(fn func()) {
	if owner := CurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// mustOwner returns the current owner or panics with E001.
func mustOwner(hook string) *Owner {
	owner := CurrentOwner()
	if owner == nil || !IsRendering() {
		panic(errors.New("E001").
			WithDetailf("%s was called while no component was rendering.", hook).
			WithSuggestion("call hooks from inside a component's render function"))
	}
	return owner
}
