package deferred

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// Task holds a result that was computed at schedule time and the callback it
// will be delivered to. A Task fires at most once, and not before it is released
// by the call that scheduled it.
type Task[T Number] struct {
	id        string
	operands  []T
	result    T
	delay     time.Duration
	executeAt time.Time
	callback  Callback[T]
	released  chan struct{}
	fired     atomic.Bool
}

func newTask[T Number](id string, operands []T, result T, callback Callback[T], delay time.Duration, now time.Time) *Task[T] {
	return &Task[T]{
		id:        id,
		operands:  operands,
		result:    result,
		delay:     delay,
		executeAt: now.Add(delay),
		callback:  callback,
		released:  make(chan struct{}),
	}
}

// release lets Execute deliver the result. It must be called exactly once.
func (t *Task[T]) release() {
	close(t.released)
}

// Execute delivers the precomputed result to the callback, first waiting for the
// scheduling call to return. The callback is dropped afterwards; a second call
// returns ErrAlreadyFired.
func (t *Task[T]) Execute() error {
	<-t.released

	if !t.fired.CompareAndSwap(false, true) {
		return ErrAlreadyFired
	}

	callback := t.callback
	t.callback = nil
	callback(t.result)

	return nil
}

// ExecuteAt returns the earliest time the callback may fire.
func (t *Task[T]) ExecuteAt() time.Time {
	return t.executeAt
}

// ID returns the task identifier.
func (t *Task[T]) ID() string {
	return t.id
}

// Operands returns a copy of the operands the result was computed from.
func (t *Task[T]) Operands() []T {
	return slices.Clone(t.operands)
}

// Result returns the precomputed result.
func (t *Task[T]) Result() T {
	return t.result
}

// Delay returns the delay the task was scheduled with.
func (t *Task[T]) Delay() time.Duration {
	return t.delay
}

// Fired reports whether the callback has been invoked.
func (t *Task[T]) Fired() bool {
	return t.fired.Load()
}

var _ scheduler.Task = (*Task[int])(nil)
