package deferred

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// Runner computes results synchronously and delivers them to callbacks,
// either right away or through a scheduler after a delay.
type Runner[T Number] struct {
	scheduler scheduler.Scheduler
	nextID    atomic.Uint64
}

// NewRunner creates a Runner that hands deferred callbacks to s.
// s must run tasks asynchronously; a nil s only supports RunImmediate,
// RunDeferred then fails with ErrNilScheduler.
func NewRunner[T Number](s scheduler.Scheduler) *Runner[T] {
	return &Runner[T]{scheduler: s}
}

// RunImmediate computes op(a, b) and invokes callback with the result before returning.
// A nil callback makes the call a no-op once the inputs are validated.
func (r *Runner[T]) RunImmediate(a, b T, op Operation[T], callback Callback[T]) error {
	if err := validate(op, a, b); err != nil {
		return err
	}
	if callback == nil {
		return nil
	}

	callback(op(a, b))
	return nil
}

// RunDeferred computes op(a, b) now and schedules callback to receive the result
// once delay has elapsed. It returns without waiting for the callback.
// Invalid input is reported before anything is scheduled.
// The callback never starts before RunDeferred has returned, even for a zero delay.
func (r *Runner[T]) RunDeferred(a, b T, op Operation[T], callback Callback[T], delay time.Duration) error {
	if r.scheduler == nil {
		return ErrNilScheduler
	}
	if err := validate(op, a, b); err != nil {
		return err
	}
	if delay < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelay, delay)
	}
	if callback == nil {
		return nil
	}

	id := fmt.Sprintf("deferred-%d", r.nextID.Add(1))
	task := newTask(id, []T{a, b}, op(a, b), callback, delay, time.Now())
	// Held until this call returns; a loop that picks the task up early waits for it.
	defer task.release()
	r.scheduler.Schedule(task)

	slog.Debug("deferred callback scheduled", "task_id", id, "delay", delay, "execute_at", task.ExecuteAt())
	return nil
}

func validate[T Number](op Operation[T], operands ...T) error {
	if op == nil {
		return ErrNilOperation
	}
	return checkOperands(operands...)
}
