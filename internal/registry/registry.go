// Package registry provides identity-mapped interning stores: one shared
// instance per identifier for each entity kind, plus the version-aware
// article store. Registries are injected where needed rather than held as
// package state, so tests construct fresh ones.
package registry

import (
	"sort"
	"sync"
)

// Registry interns one value per string identifier. The first writer for
// an identifier wins; later constructors for the same identifier never run.
// All methods are safe for concurrent use.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// New creates an empty registry for one entity kind.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// CreateOrGet returns the value interned under id, constructing it with
// build only if the id is absent. Build runs under the exclusive lock and
// must be a pure in-memory constructor.
func (r *Registry[T]) CreateOrGet(id string, build func() T) T {
	r.mu.RLock()
	if v, ok := r.entries[id]; ok {
		r.mu.RUnlock()
		return v
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[id]; ok {
		return v
	}
	v := build()
	r.entries[id] = v
	return v
}

// Get returns the value interned under id, if any.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[id]
	return v, ok
}

// Len returns the number of interned identifiers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns a sorted snapshot of the interned identifiers.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
