package vango

import (
	"sync"

	"github.com/vango-dev/store/internal/errors"
)

// reducerSlot is the per-instance state behind UseReducer.
type reducerSlot[S any] struct {
	mu       sync.Mutex
	state    S
	reducer  func(S) S
	listener Listener
}

func (r *reducerSlot[S]) get() S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *reducerSlot[S]) dispatch() {
	r.mu.Lock()
	r.state = r.reducer(r.state)
	l := r.listener
	r.mu.Unlock()

	if l != nil {
		l.MarkDirty()
	}
}

// UseReducer returns the component's current reducer state and a dispatch
// function. Dispatch applies reducer to the state and marks the rendering
// component dirty so it renders again on the next flush.
//
// With a counter reducer it is the force-render primitive:
//
//	_, rerender := vango.UseReducer(func(c int) int { return c + 1 }, 0)
//
// The reducer passed on the first render is kept; later renders only read.
func UseReducer[S any](reducer func(S) S, initial S) (S, func()) {
	owner := mustOwner("UseReducer")
	owner.TrackHook(HookReducer)

	if slot := owner.UseHookSlot(); slot != nil {
		r, ok := slot.(*reducerSlot[S])
		if !ok {
			panic(errors.New("E007").WithDetailf("UseReducer found %T in its hook slot", slot))
		}
		return r.get(), r.dispatch
	}

	r := &reducerSlot[S]{
		state:    initial,
		reducer:  reducer,
		listener: CurrentListener(),
	}
	owner.SetHookSlot(r)
	return initial, r.dispatch
}
