// Package keyed is a small map-backed state container for per-entity UI
// state, e.g. one paging cursor and loading flag per course row.
package keyed

import "sync"

// Store maps entity keys to their own state value. Zero values are handed
// out for unknown keys, so callers never nil-check.
type Store[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// NewStore returns an empty store.
func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{m: make(map[K]V)}
}

// Get returns the state for key, or the zero value if none was set.
func (s *Store[K, V]) Get(key K) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key]
}

// Lookup returns the state for key and whether it was present.
func (s *Store[K, V]) Lookup(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Set stores state for key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

// Update applies fn to the current state for key (zero value if unset) and
// stores the result.
func (s *Store[K, V]) Update(key K, fn func(V) V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = fn(s.m[key])
}

// Delete removes the state for key.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Clear drops all state, e.g. when the parent list refetches under new
// filters.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K]V)
}

// Keys returns the keys currently held, in no particular order.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]K, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys
}

// Len reports how many keys hold state.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
