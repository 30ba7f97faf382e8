// Package vtest provides testing helpers for Vango components.
//
// A Harness owns a runtime for the length of a test. Mount renders a
// component and flushes the tree, so mount callbacks have already run when
// Mount returns:
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    inst := h.Mount(func() any {
//	        return useCounter.Use()
//	    })
//
//	    s := vtest.Last[store.State](t, inst)
//	    store.Action(s, "increment")()
//	    h.Flush()
//
//	    if got := store.Get[int](vtest.Last[store.State](t, inst), "count"); got != 1 {
//	        t.Errorf("count = %d, want 1", got)
//	    }
//	}
//
// # Render Assertions
//
//	vtest.ExpectRenders(t, inst, 2)
//	vtest.ExpectClean(t, h)
package vtest
