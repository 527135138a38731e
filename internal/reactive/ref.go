// Package reactive provides a small observable value holder. Watchers are
// explicit subscriptions that receive whole replacement snapshots, never
// incremental diffs.
package reactive

import "sync"

// Ref holds a mutable value and notifies watchers when it is replaced.
// Replacing the value is the hot-reload seam: consumers holding the Ref see
// the swap without re-wiring.
type Ref[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers map[int]func(T)
	next     int
}

// NewRef creates a holder seeded with value.
func NewRef[T any](value T) *Ref[T] {
	return &Ref[T]{value: value, watchers: make(map[int]func(T))}
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the value wholesale and notifies every watcher with the new
// value. Watchers run synchronously on the calling goroutine.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	r.value = value
	fns := make([]func(T), 0, len(r.watchers))
	for _, fn := range r.watchers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Watch subscribes fn to value replacements. fn runs immediately with the
// current value, then once per Set. The returned function cancels the
// subscription; it is safe to call more than once.
func (r *Ref[T]) Watch(fn func(T)) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	r.watchers[id] = fn
	current := r.value
	r.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.watchers, id)
			r.mu.Unlock()
		})
	}
}
