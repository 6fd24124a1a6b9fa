package scheduler

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventLoop is a single-threaded task scheduler. Tasks are kept in a min-heap
// ordered by ExecuteAt and run one after another on the goroutine that called Start.
type EventLoop struct {
	dispatcher

	tasks        *taskHeap
	mu           sync.Mutex
	seq          uint64
	wake         chan struct{}
	stopWhenIdle bool
}

// NewEventLoop creates a new EventLoop instance. When stopWhenIdle is set,
// Start returns as soon as no tasks are pending.
func NewEventLoop(stopWhenIdle bool) *EventLoop {
	h := &taskHeap{}
	heap.Init(h)

	return &EventLoop{
		tasks:        h,
		wake:         make(chan struct{}, 1),
		stopWhenIdle: stopWhenIdle,
	}
}

// Schedule adds a task to the loop's heap. It never waits for the task to run
// and may be called from any goroutine, including from a running task.
func (l *EventLoop) Schedule(task Task) {
	l.mu.Lock()
	l.seq++
	heap.Push(l.tasks, pendingTask{task: task, seq: l.seq})
	l.mu.Unlock()

	// The loop may be sleeping until a later task; make it recompute.
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Start runs the dispatch loop on the calling goroutine until the context is
// cancelled, or until no tasks remain if the loop was created with stopWhenIdle.
// Tasks still pending when Start returns stay queued.
func (l *EventLoop) Start(ctx context.Context) {
	slog.Info("starting event loop", "count_tasks", l.PendingTasksCount())

	timer := time.NewTimer(0)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			slog.Info("context cancelled, stopping event loop", "count_tasks", l.PendingTasksCount())
			return
		}

		next, wait, ok := l.popReady(time.Now())
		if ok {
			l.run(next.task)
			continue
		}

		var fire <-chan time.Time
		if wait > 0 {
			timer.Reset(wait)
			fire = timer.C
		} else if l.stopWhenIdle {
			slog.Info("no remaining tasks, stopping event loop")
			return
		}

		select {
		case <-ctx.Done():
		case <-l.wake:
		case <-fire:
		}
		timer.Stop()
	}
}

// popReady removes and returns the earliest task if it is due at now.
// Otherwise it returns the duration until the earliest task, or 0 if the heap is empty.
func (l *EventLoop) popReady(now time.Time) (pendingTask, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tasks.Len() == 0 {
		return pendingTask{}, 0, false
	}

	// The heap keeps tasks sorted by ExecuteAt, so we only need to check the top
	executeAt := (*l.tasks)[0].task.ExecuteAt()
	if now.Before(executeAt) {
		return pendingTask{}, executeAt.Sub(now), false
	}

	return heap.Pop(l.tasks).(pendingTask), 0, true
}

// PendingTasksCount returns the number of tasks waiting to be executed.
func (l *EventLoop) PendingTasksCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Len()
}

var _ Scheduler = (*EventLoop)(nil)
