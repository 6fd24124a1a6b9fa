package scheduler

import "time"

// Task represents a schedulable unit of work with an execution time.
type Task interface {
	// Execute runs the task and returns an error if the execution fails.
	Execute() error

	// ExecuteAt returns the earliest time when this task may be executed.
	ExecuteAt() time.Time

	// ID returns a unique identifier for this task (used for logging).
	ID() string
}

// TaskResult describes a single task execution.
type TaskResult struct {
	TaskID      string
	Error       error
	ScheduledAt time.Time
	StartTime   time.Time
	EndTime     time.Time
	WorkerID    string
}

// Lateness returns how long after its scheduled time the task started.
func (r TaskResult) Lateness() time.Duration {
	return r.StartTime.Sub(r.ScheduledAt)
}
