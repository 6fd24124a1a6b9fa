package deferred

import "sync"

// Capture is a value a deferred callback reads when it fires.
type Capture[T any] interface {
	Value() T
}

type snapshot[T any] struct {
	v T
}

func (s snapshot[T]) Value() T { return s.v }

// Snapshot copies v now. Later changes to the variable v came from are not seen.
func Snapshot[T any](v T) Capture[T] {
	return snapshot[T]{v: v}
}

// Cell is a mutable value shared between the code that schedules a callback
// and the callback itself. It is safe for concurrent use.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewCell creates a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Store replaces the current value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

// Update applies fn to the current value and stores the result, returning it.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = fn(c.v)
	return c.v
}

type handle[T any] struct {
	cell *Cell[T]
}

func (h handle[T]) Value() T { return h.cell.Load() }

// Handle observes cell at read time, so a callback sees whatever the cell
// holds when it fires rather than when it was scheduled.
func Handle[T any](cell *Cell[T]) Capture[T] {
	return handle[T]{cell: cell}
}

// Bind builds a callback that receives the captured value alongside the result.
func Bind[C any, T any](c Capture[C], fn func(captured C, result T)) Callback[T] {
	return func(result T) {
		fn(c.Value(), result)
	}
}
