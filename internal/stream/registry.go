package stream

import (
	"sync"

	"github.com/vitalguard/vitalguard/internal/logger"
)

// Listener consumes one value from a stream.
type Listener[T any] func(T)

type entry[T any] struct {
	id int
	fn Listener[T]
}

// Registry fans a stream of values out to independently removable listeners.
// Dispatch order is registration order. A misbehaving listener never blocks
// delivery to the listeners registered after it.
type Registry[T any] struct {
	mu      sync.Mutex
	nextID  int
	entries []entry[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing removes exactly this registration; calling it more than
// once is a no-op.
func (r *Registry[T]) Subscribe(fn Listener[T]) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, entry[T]{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		for i, e := range r.entries {
			if e.id == id {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Dispatch delivers a value to every listener in registration order.
// Iteration runs over a snapshot, so listeners may unsubscribe themselves
// or others mid-dispatch.
func (r *Registry[T]) Dispatch(value T) {
	r.mu.Lock()
	snapshot := make([]entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, e := range snapshot {
		dispatchOne(e.fn, value)
	}
}

func dispatchOne[T any](fn Listener[T], value T) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn().Interface("panic", rec).Msg("Listener panicked during dispatch")
		}
	}()

	fn(value)
}
