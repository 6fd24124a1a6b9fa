package deferred

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Event is one recorded callback invocation.
type Event[T any] struct {
	Label string
	Value T
	At    time.Time
}

// Recorder is an ordered, concurrency-safe list of callback invocations.
type Recorder[T any] struct {
	mu      sync.Mutex
	events  []Event[T]
	changed chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{changed: make(chan struct{})}
}

// Record appends an event and wakes any Wait callers.
func (r *Recorder[T]) Record(label string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event[T]{Label: label, Value: v, At: time.Now()})
	close(r.changed)
	r.changed = make(chan struct{})
}

// Callback returns a callback that records each result under label.
func (r *Recorder[T]) Callback(label string) Callback[T] {
	return func(result T) {
		r.Record(label, result)
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder[T]) Events() []Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Wait blocks until at least n events are recorded or ctx is done.
// It returns the events recorded so far in both cases.
func (r *Recorder[T]) Wait(ctx context.Context, n int) ([]Event[T], error) {
	for {
		r.mu.Lock()
		if len(r.events) >= n {
			events := slices.Clone(r.events)
			r.mu.Unlock()
			return events, nil
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return r.Events(), ctx.Err()
		case <-changed:
		}
	}
}
