package store

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/vango-dev/store/internal/errors"
	"github.com/vango-dev/store/pkg/vango"
)

// Hook is the handle returned by Create. Its methods are hooks: call them
// while a component renders.
type Hook struct {
	setup SetupFunc
	store *shared
	opts  options
}

// Create builds the shared state by running setup once with a setter that
// does nothing, and returns the hook that components use to read and update
// it. setup panics propagate to the caller. A nil setup panics with E002.
//
// Example:
//
//	var useSession = store.Create(func(set store.Setter) store.State {
//	    return store.State{
//	        "user": "",
//	        "login": func(name string) {
//	            set(func(store.State) store.State { return store.State{"user": name} })
//	        },
//	    }
//	}, store.Name("session"))
func Create(setup SetupFunc, opts ...Option) *Hook {
	if setup == nil {
		panic(errors.New("E002").WithSuggestion("pass a func(set store.Setter) store.State"))
	}

	h := &Hook{
		setup: setup,
		opts:  defaultOptions(),
	}
	for _, opt := range opts {
		opt(&h.opts)
	}

	h.store = newShared(h.runSetup(0, func(Updater) {}))
	h.opts.metrics.observeKeys(h.opts.name, h.store.len())
	h.opts.logger.Debug("store created",
		"store", h.opts.name,
		"keys", h.store.len(),
	)
	return h
}

// Use returns the whole shared state.
func (h *Hook) Use() State {
	h.bind()
	return h.store.Read()
}

// Select returns sel applied to the shared state. A nil sel behaves like Use.
func (h *Hook) Select(sel Selector) any {
	h.bind()
	s := h.store.Read()
	if sel == nil {
		return s
	}
	return sel(s)
}

// Select is the typed form of Hook.Select.
func Select[V any](h *Hook, sel func(State) V) V {
	h.bind()
	return sel(h.store.Read())
}

// Store returns the owned state container, for code that wants the state
// injected rather than read through a hook.
func (h *Hook) Store() Store {
	return h.store
}

// Snapshot returns a copy of the current state. It is not a hook.
func (h *Hook) Snapshot() State {
	return h.store.snapshot()
}

// Name returns the store name used in logs, metrics and spans.
func (h *Hook) Name() string {
	return h.opts.name
}

// bind registers the calling component as a consumer: a per-instance
// re-render counter, and a mount callback that reruns setup with a setter
// bound to this instance.
func (h *Hook) bind() {
	owner := vango.CurrentOwner()
	if owner == nil || !vango.IsRendering() {
		panic(errors.New("E001").
			WithDetailf("store %q was read while no component was rendering.", h.opts.name).
			WithSuggestion("call hook.Use() inside the component's render function"))
	}
	owner.TrackHook(vango.HookStore)

	_, rerender := vango.UseReducer(func(c int) int { return c + 1 }, 0)
	b := &binding{
		hook:     h,
		instance: owner.ID(),
		rerender: rerender,
	}
	vango.OnMount(b.mount)
}

// runSetup calls setup inside a span.
func (h *Hook) runSetup(instance uint64, set Setter) State {
	_, span := h.opts.tracer.start(context.Background(), "store.setup", h.opts.name, instance)
	defer span.end()
	return h.setup(set)
}

// binding is the setter of one consumer: the shared store plus that
// component's re-render trigger.
type binding struct {
	hook     *Hook
	instance uint64
	rerender func()
}

// mount reruns setup with this binding's setter, merges the result and
// re-renders the consumer.
func (b *binding) mount() {
	h := b.hook
	partial := h.runSetup(b.instance, b.set)

	if h.opts.preserve {
		h.store.rebind(partial)
	} else {
		h.store.Update(partial)
	}

	h.opts.metrics.observeMount(h.opts.name, h.store.len())
	h.opts.logger.Debug("store consumer mounted",
		"store", h.opts.name,
		"instance", b.instance,
		"keys", keysOf(partial),
	)
	b.rerender()
}

// set applies updater to the shared store and re-renders this consumer only.
// The updater gets a snapshot, so setters may run on any goroutine; merges
// are last-write-wins.
func (b *binding) set(updater Updater) {
	h := b.hook
	start := time.Now()

	_, span := h.opts.tracer.start(context.Background(), "store.update", h.opts.name, b.instance)
	defer span.end()

	partial := updater(h.store.snapshot())
	h.store.Update(partial)

	keys := keysOf(partial)
	span.setKeys(keys)
	h.opts.metrics.observeUpdate(h.opts.name, time.Since(start), h.store.len())
	if h.opts.logger.Enabled(context.Background(), slog.LevelDebug) {
		h.opts.logger.Debug("store updated",
			"store", h.opts.name,
			"instance", b.instance,
			"keys", keys,
		)
	}
	b.rerender()
}

func keysOf(s State) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
