// Package store provides global-state hooks for Vango components.
//
// A store is defined once, usually at package level, and read from any
// component without threading it through props or a context provider:
//
//	var useCounter = store.Create(func(set store.Setter) store.State {
//	    return store.State{
//	        "count": 0,
//	        "increment": func() {
//	            set(func(s store.State) store.State {
//	                return store.State{"count": s["count"].(int) + 1}
//	            })
//	        },
//	    }
//	})
//
//	func Counter() vango.Component {
//	    return vango.Func(func() any {
//	        s := useCounter.Use()
//	        return CounterView{
//	            Count:       store.Get[int](s, "count"),
//	            OnIncrement: store.Action(s, "increment"),
//	        }
//	    })
//	}
//
// A selector narrows the read to one value:
//
//	count := store.Select(useCounter, func(s store.State) int {
//	    return store.Get[int](s, "count")
//	})
//
// # Semantics
//
// The state is a single map shared by every consumer. Its identity never
// changes; updates shallow-merge a partial map into it.
//
// Create runs the setup function once with a setter that does nothing. Each
// component that uses the hook runs setup again after its first render, with
// a setter bound to that component, and merges the result into the shared
// state. Because of this, actions read from the state are bound to the most
// recently mounted consumer, and by default a new mount resets data keys to
// the values setup returns. PreserveOnRemount keeps existing data keys.
//
// A setter re-renders only the component it is bound to. Other mounted
// consumers see the new values on their next render but are not notified.
// Selectors narrow the returned value; they do not skip re-renders.
package store
