package scheduler

import "context"

// Scheduler manages and executes tasks at their scheduled times.
type Scheduler interface {
	// Schedule adds a task to the scheduler. It must not run the task before returning.
	Schedule(task Task)

	// Start begins the scheduler's background processing.
	// It runs until the provided context is cancelled.
	Start(ctx context.Context)

	// PendingTasksCount returns the number of tasks waiting to be executed.
	PendingTasksCount() int
}

// Listener is notified after every task the scheduler runs.
// The scheduler never owns the listener; a nil Listener means nobody is listening.
type Listener interface {
	TaskCompleted(result TaskResult)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(result TaskResult)

// TaskCompleted calls f(result).
func (f ListenerFunc) TaskCompleted(result TaskResult) {
	f(result)
}
