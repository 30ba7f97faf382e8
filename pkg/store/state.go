package store

import "github.com/vango-dev/store/internal/errors"

// Get returns s[key] as V, or the zero V when the key is missing or holds
// another type.
func Get[V any](s State, key string) V {
	v, _ := s[key].(V)
	return v
}

// Lookup returns s[key] as V and whether it was present with that type.
func Lookup[V any](s State, key string) (V, bool) {
	v, ok := s[key].(V)
	return v, ok
}

// Action returns the func() stored under key. It panics with E004 when the
// key is missing or holds something else.
func Action(s State, key string) func() {
	fn, ok := s[key].(func())
	if !ok {
		panic(errors.New("E004").WithDetailf("no func() stored under %q (have %T)", key, s[key]))
	}
	return fn
}
