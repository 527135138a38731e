// Package cache provides the key/value store backing loader memoization.
// Stores are constructor-injected so callers own the lifecycle instead of
// relying on module-level globals.
package cache

import "sync"

// Store is a minimal key/value cache. A slot, once populated, is expected to
// keep its value for the store's lifetime.
type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
}

// Memory is a process-lifetime in-memory Store. The zero value is not
// usable; create one with NewMemory.
type Memory[T any] struct {
	mu    sync.RWMutex
	slots map[string]T
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{slots: make(map[string]T)}
}

// Get returns the value stored under key.
func (m *Memory[T]) Get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	return v, ok
}

// Set stores value under key, overwriting any previous slot.
func (m *Memory[T]) Set(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
}

// Len reports the number of populated slots.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}
