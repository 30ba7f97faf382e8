package store

import (
	"reflect"
	"sync"
)

// State is the shared store: string keys mapped to data and action funcs.
type State map[string]any

// Updater computes the keys that change from the current state.
type Updater func(State) State

// Setter applies an updater to the store.
type Setter func(Updater)

// SetupFunc builds the initial state and actions. set is bound to the
// component that triggered the setup run, or does nothing for the initial
// run inside Create.
type SetupFunc func(set Setter) State

// Selector narrows the store to one value.
type Selector func(State) any

// Store is the owned state container behind a hook.
type Store interface {
	// Read returns the live shared state. The map identity never changes.
	// It is not locked: read it from the render goroutine, or use a
	// snapshot when setters run concurrently.
	Read() State

	// Update shallow-merges partial into the shared state.
	Update(partial State)
}

// shared is the single Store instance owned by a Hook.
type shared struct {
	mu    sync.RWMutex
	state State
}

var _ Store = (*shared)(nil)

func newShared(initial State) *shared {
	if initial == nil {
		initial = State{}
	}
	return &shared{state: initial}
}

func (s *shared) Read() State {
	return s.state
}

func (s *shared) Update(partial State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		s.state[k] = v
	}
}

// rebind merges partial but keeps keys that already hold data. Missing keys
// and keys holding funcs are overwritten so actions bind to the new setter.
func (s *shared) rebind(partial State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		if cur, ok := s.state[k]; ok && !isFunc(cur) {
			continue
		}
		s.state[k] = v
	}
}

// snapshot copies the state under the read lock.
func (s *shared) snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(State, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out
}

func (s *shared) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
