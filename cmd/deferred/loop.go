package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hackebrot/go-deferred/internal/config"
	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// eventLoop is a scheduler that reports finished tasks to a listener.
type eventLoop interface {
	scheduler.Scheduler
	SetListener(listener scheduler.Listener)
}

// newEventLoop builds the loop selected by cfg.Strategy.
func newEventLoop(cfg config.Loop) eventLoop {
	if cfg.Strategy == config.StrategyPolling {
		return scheduler.NewPollingLoop(cfg.CheckInterval, cfg.StopWhenIdle)
	}
	return scheduler.NewEventLoop(cfg.StopWhenIdle)
}

// runLoop drives the event loop while wait blocks for the scenario to finish.
// The loop is stopped once wait returns.
func runLoop(ctx context.Context, loop scheduler.Scheduler, wait func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)

	g.Go(func() error {
		loop.Start(loopCtx)
		return nil
	})

	g.Go(func() error {
		defer stopLoop()
		return wait(gctx)
	})

	return g.Wait()
}
