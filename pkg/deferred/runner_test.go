package deferred_test

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hackebrot/go-deferred/pkg/deferred"
	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

func TestRunImmediate_SevenPlusTwo(t *testing.T) {
	runner := deferred.NewRunner[int](scheduler.NewEventLoop(true))

	var got int
	called := false
	err := runner.RunImmediate(7, 2, deferred.Add[int], func(result int) {
		called = true
		got = result
	})

	require.NoError(t, err)
	assert.True(t, called, "callback must run before RunImmediate returns")
	assert.Equal(t, 9, got)
}

func TestRunImmediate_CallbackBeforeReturnProperty(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[float64](loop)

	property := func(a, b float64) bool {
		var got float64
		calls := 0
		err := runner.RunImmediate(a, b, deferred.Add[float64], func(result float64) {
			calls++
			got = result
		})
		return err == nil && calls == 1 && got == a+b
	}

	require.NoError(t, quick.Check(property, nil))
	assert.Zero(t, loop.PendingTasksCount(), "immediate calls must not schedule anything")
}

func TestRunDeferred_SevenMinusTwo(t *testing.T) {
	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	const delay = 30 * time.Millisecond
	scheduledAt := time.Now()
	require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], rec.Callback("sub"), delay))
	assert.Zero(t, rec.Len(), "callback must not fire before RunDeferred returns")

	events, err := rec.Wait(waitContext(t, 2*time.Second), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].Value)
	assert.GreaterOrEqual(t, events[0].At.Sub(scheduledAt), delay)
}

func TestRunDeferred_ThreeSecondDelay(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the full three second delay")
	}

	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	scheduledAt := time.Now()
	require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], rec.Callback("sub"), 3*time.Second))
	assert.Less(t, time.Since(scheduledAt), 100*time.Millisecond, "caller must resume immediately")

	events, err := rec.Wait(waitContext(t, 10*time.Second), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, events[0].Value)
	assert.GreaterOrEqual(t, events[0].At.Sub(scheduledAt), 3*time.Second)
}

// markingScheduler flags when the wrapped Schedule call has returned, which is
// still inside RunDeferred. A callback that sees the flag unset ran early.
type markingScheduler struct {
	scheduler.Scheduler
	scheduled atomic.Bool
}

func (m *markingScheduler) Schedule(task scheduler.Task) {
	m.scheduled.Store(false)
	m.Scheduler.Schedule(task)
	// Give the loop goroutine every chance to run the task right now.
	runtime.Gosched()
	m.scheduled.Store(true)
}

func TestRunDeferred_ReturnsBeforeCallbackProperty(t *testing.T) {
	marker := &markingScheduler{Scheduler: startLoop(t)}
	runner := deferred.NewRunner[int64](marker)

	property := func(a, b int32, jitter uint8) bool {
		// Covers zero delays as well as short positive ones.
		delay := time.Duration(jitter%10) * time.Millisecond

		fired := make(chan bool, 1)
		var got int64
		var firedAt time.Time

		scheduledAt := time.Now()
		err := runner.RunDeferred(int64(a), int64(b), deferred.Sub[int64], func(result int64) {
			got = result
			firedAt = time.Now()
			fired <- marker.scheduled.Load()
		}, delay)
		if err != nil {
			return false
		}

		select {
		case afterSchedule := <-fired:
			return afterSchedule &&
				got == int64(a)-int64(b) &&
				firedAt.Sub(scheduledAt) >= delay
		case <-time.After(2 * time.Second):
			return false
		}
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 200}))
}

func TestRunDeferred_ZeroDelayNeverFiresInsideCall(t *testing.T) {
	marker := &markingScheduler{Scheduler: startLoop(t)}
	runner := deferred.NewRunner[int](marker)

	const calls = 2000
	var early atomic.Int32
	rec := deferred.NewRecorder[int]()

	ctx := waitContext(t, 10*time.Second)
	for i := range calls {
		require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], func(result int) {
			if !marker.scheduled.Load() {
				early.Add(1)
			}
			rec.Record("sub", result)
		}, 0))
		// Wait for delivery so the next call's flag reset cannot be seen by this callback.
		_, err := rec.Wait(ctx, i+1)
		require.NoError(t, err)
	}

	assert.Zero(t, early.Load(), "callback fired before RunDeferred returned")
}

func TestRunDeferred_ComputesAtScheduleTime(t *testing.T) {
	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	var computed atomic.Int32
	op := func(a, b int) int {
		computed.Add(1)
		return a - b
	}

	require.NoError(t, runner.RunDeferred(7, 2, op, rec.Callback("sub"), 20*time.Millisecond))
	assert.EqualValues(t, 1, computed.Load(), "result must be computed before RunDeferred returns")
	assert.Zero(t, rec.Len())

	events, err := rec.Wait(waitContext(t, 2*time.Second), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, events[0].Value)
	assert.EqualValues(t, 1, computed.Load(), "delivery must not recompute the result")
}

func TestRunDeferred_FiresInReadyTimeOrder(t *testing.T) {
	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	delays := []time.Duration{40, 10, 25, 10, 0}
	for i, d := range delays {
		label := fmt.Sprintf("call-%d", i)
		require.NoError(t, runner.RunDeferred(i, 0, deferred.Add[int], rec.Callback(label), d*time.Millisecond))
	}

	events, err := rec.Wait(waitContext(t, 2*time.Second), len(delays))
	require.NoError(t, err)

	var labels []string
	for _, e := range events {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"call-4", "call-1", "call-3", "call-2", "call-0"}, labels)
}

func TestRunDeferred_FromInsideCallback(t *testing.T) {
	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], func(result int) {
		rec.Record("outer", result)
		assert.NoError(t, runner.RunDeferred(result, 3, deferred.Mul[int], rec.Callback("inner"), 5*time.Millisecond))
	}, 5*time.Millisecond))

	events, err := rec.Wait(waitContext(t, 2*time.Second), 2)
	require.NoError(t, err)
	assert.Equal(t, "outer", events[0].Label)
	assert.Equal(t, 5, events[0].Value)
	assert.Equal(t, "inner", events[1].Label)
	assert.Equal(t, 15, events[1].Value)
}

func TestRunDeferred_ConcurrentCallers(t *testing.T) {
	loop := startLoop(t)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	const callers = 50
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(10)
	for i := range callers {
		g.Go(func() error {
			return runner.RunDeferred(i, 1, deferred.Add[int], rec.Callback("add"), time.Duration(i%5)*time.Millisecond)
		})
	}
	require.NoError(t, g.Wait())

	events, err := rec.Wait(waitContext(t, 2*time.Second), callers)
	require.NoError(t, err)

	sum := 0
	for _, e := range events {
		sum += e.Value
	}
	// sum of (i + 1) for i in [0, callers)
	assert.Equal(t, callers*(callers+1)/2, sum)
}

func TestRun_RejectsInvalidOperands(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[float64](loop)

	tests := []struct {
		name     string
		a, b     float64
		position int
	}{
		{"NaN first", math.NaN(), 1, 0},
		{"positive infinity second", 1, math.Inf(1), 1},
		{"negative infinity first", math.Inf(-1), 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			cb := func(float64) { called = true }

			err := runner.RunImmediate(tt.a, tt.b, deferred.Add[float64], cb)
			require.ErrorIs(t, err, deferred.ErrInvalidOperand)

			var opErr *deferred.OperandError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.position, opErr.Position)

			err = runner.RunDeferred(tt.a, tt.b, deferred.Sub[float64], cb, time.Millisecond)
			require.ErrorIs(t, err, deferred.ErrInvalidOperand)

			assert.False(t, called)
			assert.Zero(t, loop.PendingTasksCount(), "nothing may be scheduled for invalid input")
		})
	}
}

func TestRun_RejectsNilOperation(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[int](loop)

	assert.ErrorIs(t, runner.RunImmediate(1, 2, nil, func(int) {}), deferred.ErrNilOperation)
	assert.ErrorIs(t, runner.RunDeferred(1, 2, nil, func(int) {}, 0), deferred.ErrNilOperation)
	assert.Zero(t, loop.PendingTasksCount())
}

func TestRunDeferred_NilScheduler(t *testing.T) {
	runner := deferred.NewRunner[int](nil)

	var got int
	require.NoError(t, runner.RunImmediate(7, 2, deferred.Add[int], func(result int) { got = result }))
	assert.Equal(t, 9, got)

	err := runner.RunDeferred(7, 2, deferred.Sub[int], func(int) {}, time.Millisecond)
	assert.ErrorIs(t, err, deferred.ErrNilScheduler)
}

func TestRunDeferred_RejectsNegativeDelay(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[int](loop)

	err := runner.RunDeferred(7, 2, deferred.Sub[int], func(int) {}, -time.Second)
	assert.ErrorIs(t, err, deferred.ErrNegativeDelay)
	assert.Zero(t, loop.PendingTasksCount())
}

func TestRun_NilCallbackIsNoOp(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[int](loop)

	assert.NoError(t, runner.RunImmediate(7, 2, deferred.Add[int], nil))
	assert.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], nil, time.Millisecond))
	assert.Zero(t, loop.PendingTasksCount())
}

func TestRunDeferred_ListenerSeesTask(t *testing.T) {
	loop := scheduler.NewEventLoop(true)
	runner := deferred.NewRunner[int](loop)

	var results []scheduler.TaskResult
	loop.SetListener(scheduler.ListenerFunc(func(r scheduler.TaskResult) {
		results = append(results, r)
	}))

	require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], func(int) {}, 5*time.Millisecond))
	loop.Start(waitContext(t, 2*time.Second))

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "deferred-1", results[0].TaskID)
	assert.GreaterOrEqual(t, results[0].Lateness(), time.Duration(0))
}

func TestRunDeferred_OnPollingLoop(t *testing.T) {
	loop := scheduler.NewPollingLoop(time.Millisecond, true)
	runner := deferred.NewRunner[int](loop)
	rec := deferred.NewRecorder[int]()

	scheduledAt := time.Now()
	require.NoError(t, runner.RunDeferred(7, 2, deferred.Sub[int], rec.Callback("late"), 15*time.Millisecond))
	require.NoError(t, runner.RunDeferred(7, 2, deferred.Add[int], rec.Callback("early"), 5*time.Millisecond))

	loop.Start(waitContext(t, 2*time.Second))

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].Label)
	assert.Equal(t, 9, events[0].Value)
	assert.Equal(t, "late", events[1].Label)
	assert.Equal(t, 5, events[1].Value)
	assert.GreaterOrEqual(t, events[1].At.Sub(scheduledAt), 15*time.Millisecond)
}
