package scheduler

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultCheckInterval is used when a PollingLoop is created without a positive interval.
const DefaultCheckInterval = 10 * time.Millisecond

// PollingLoop is a task scheduler that checks for ready tasks at fixed intervals.
// Ready tasks run sequentially on the goroutine that called Start, earliest first,
// so a task may start up to one interval after its ExecuteAt.
type PollingLoop struct {
	dispatcher

	tasks         []pendingTask
	mu            sync.Mutex
	seq           uint64
	checkInterval time.Duration
	stopWhenIdle  bool
}

// NewPollingLoop creates a new PollingLoop instance.
func NewPollingLoop(checkInterval time.Duration, stopWhenIdle bool) *PollingLoop {
	if checkInterval <= 0 {
		checkInterval = DefaultCheckInterval
	}

	return &PollingLoop{
		tasks:         make([]pendingTask, 0),
		checkInterval: checkInterval,
		stopWhenIdle:  stopWhenIdle,
	}
}

// Schedule adds a task to the scheduler.
func (l *PollingLoop) Schedule(task Task) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.tasks = append(l.tasks, pendingTask{task: task, seq: l.seq})
}

// Start runs the scheduler loop, checking for ready tasks at regular intervals until the
// context is cancelled, or until no tasks remain if the loop was created with stopWhenIdle.
func (l *PollingLoop) Start(ctx context.Context) {
	slog.Info("starting polling event loop", "count_tasks", l.PendingTasksCount(), "check_interval", l.checkInterval)

	ticker := time.NewTicker(l.checkInterval)
	defer ticker.Stop()

	for {
		if l.stopWhenIdle && l.PendingTasksCount() == 0 {
			slog.Info("no remaining tasks, stopping event loop")
			return
		}

		select {
		case <-ctx.Done():
			slog.Info("context cancelled, stopping event loop", "count_tasks", l.PendingTasksCount())
			return
		case <-ticker.C:
			l.executeReadyTasks(ctx)
		}
	}
}

// executeReadyTasks takes every task that is due, then runs them in ExecuteAt order.
func (l *PollingLoop) executeReadyTasks(ctx context.Context) {
	l.mu.Lock()
	now := time.Now()
	ready := make([]pendingTask, 0, len(l.tasks))
	remaining := make([]pendingTask, 0, len(l.tasks))

	for _, p := range l.tasks {
		if now.Before(p.task.ExecuteAt()) {
			remaining = append(remaining, p)
		} else {
			ready = append(ready, p)
		}
	}

	l.tasks = remaining
	l.mu.Unlock()

	slices.SortFunc(ready, func(a, b pendingTask) int {
		if c := a.task.ExecuteAt().Compare(b.task.ExecuteAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	for i, p := range ready {
		if ctx.Err() != nil {
			// Put back what was not run so it stays pending.
			l.mu.Lock()
			l.tasks = append(l.tasks, ready[i:]...)
			l.mu.Unlock()
			return
		}
		l.run(p.task)
	}
}

// PendingTasksCount returns the number of tasks waiting to be executed.
func (l *PollingLoop) PendingTasksCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

var _ Scheduler = (*PollingLoop)(nil)
