package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrTaskPanicked is reported in TaskResult.Error when a task panics.
var ErrTaskPanicked = errors.New("task panicked")

// loopWorkerID identifies the single dispatch goroutine in task results.
const loopWorkerID = "loop"

// dispatcher runs tasks one at a time and reports each result to an optional listener.
type dispatcher struct {
	listenerMu sync.Mutex
	listener   Listener
}

// SetListener installs the listener notified after each task. Pass nil to remove it.
func (d *dispatcher) SetListener(listener Listener) {
	d.listenerMu.Lock()
	defer d.listenerMu.Unlock()
	d.listener = listener
}

// run executes a single task, logs any error and reports the result to the listener.
func (d *dispatcher) run(task Task) {
	startTime := time.Now()
	err := execute(task)
	endTime := time.Now()

	if err != nil {
		slog.Error("error executing task", "task_id", task.ID(), "error", err)
	}

	d.listenerMu.Lock()
	listener := d.listener
	d.listenerMu.Unlock()

	if listener == nil {
		return
	}

	listener.TaskCompleted(TaskResult{
		TaskID:      task.ID(),
		Error:       err,
		ScheduledAt: task.ExecuteAt(),
		StartTime:   startTime,
		EndTime:     endTime,
		WorkerID:    loopWorkerID,
	})
}

// execute runs the task, turning a panic into an error so one bad task
// cannot take the loop down.
func execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	return task.Execute()
}
