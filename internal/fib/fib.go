package fib

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hackebrot/go-fibonacci"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// MaxN bounds n; the recursive strategy becomes impractically slow beyond it
// and would stall the event loop.
const MaxN = 35

// Task computes the nth Fibonacci number using a specified strategy
// when the scheduler runs it.
type Task struct {
	id        string
	executeAt time.Time
	n         int
	strategy  fibonacci.Strategy
	result    atomic.Int64
	done      atomic.Bool
}

// Execute computes the Fibonacci number and logs the result.
func (t *Task) Execute() error {
	slog.Info("starting computation", "task_id", t.id, "n", t.n)

	if t.n < 0 || t.n > MaxN {
		return fmt.Errorf("computation failed: n=%d is outside [0, %d]", t.n, MaxN)
	}

	r := t.strategy.Compute(t.n)
	t.result.Store(int64(r))
	t.done.Store(true)
	slog.Info("computation complete", "task_id", t.id, "n", t.n, "result", r)

	return nil
}

// ExecuteAt returns the scheduled execution time for the task.
func (t *Task) ExecuteAt() time.Time {
	return t.executeAt
}

// ID returns the task identifier.
func (t *Task) ID() string {
	return t.id
}

// Result returns the computed number and whether the task has run successfully.
func (t *Task) Result() (int64, bool) {
	return t.result.Load(), t.done.Load()
}

// NewTask creates a new Fibonacci computation task.
func NewTask(id string, n int, strategy fibonacci.Strategy, executeAt time.Time) *Task {
	return &Task{
		id:        id,
		executeAt: executeAt,
		n:         n,
		strategy:  strategy,
	}
}

var _ scheduler.Task = (*Task)(nil)
