package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hackebrot/go-fibonacci"

	"github.com/hackebrot/go-deferred/internal/config"
	"github.com/hackebrot/go-deferred/internal/fib"
	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// runFib schedules cfg.Demo.FibCount Fibonacci tasks at random offsets and
// returns the execution summary once all of them have run.
func runFib(ctx context.Context, cfg config.Config) (summary, error) {
	count := cfg.Demo.FibCount
	loop := newEventLoop(cfg.Loop)

	results := make(chan scheduler.TaskResult, count)
	loop.SetListener(scheduler.ListenerFunc(func(r scheduler.TaskResult) {
		results <- r
	}))

	now := time.Now()
	for n := 1; n <= count; n++ {
		var offset time.Duration
		if cfg.Demo.MaxOffset > 0 {
			offset = rand.N(cfg.Demo.MaxOffset)
		}
		taskID := fmt.Sprintf("fib%d-+%v", n, offset.Round(time.Millisecond))
		loop.Schedule(fib.NewTask(taskID, n, fibonacci.NewRecursive(), now.Add(offset)))
	}

	var collected []scheduler.TaskResult
	err := runLoop(ctx, loop, func(ctx context.Context) error {
		for len(collected) < count {
			select {
			case r := <-results:
				collected = append(collected, r)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return processResults(collected), err
}
