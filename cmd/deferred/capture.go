package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hackebrot/go-deferred/internal/config"
	"github.com/hackebrot/go-deferred/pkg/deferred"
)

// captureBump is added to both captured sources after scheduling.
const captureBump = 100

// runCapture schedules two deferred callbacks, one holding a snapshot of a
// variable and one holding a handle to a shared cell, then changes both
// before delivery.
func runCapture(ctx context.Context, cfg config.Config, out io.Writer) error {
	loop := newEventLoop(cfg.Loop)
	runner := deferred.NewRunner[int](loop)
	delivered := deferred.NewRecorder[int]()

	a, b := cfg.Demo.A, cfg.Demo.B
	counter := a
	cell := deferred.NewCell(a)

	report := func(label string) func(captured, result int) {
		return func(captured, result int) {
			fmt.Fprintf(out, "%s: captured %d, result %d\n", label, captured, result)
			delivered.Record(label, captured)
		}
	}

	if err := runner.RunDeferred(a, b, deferred.Sub[int], deferred.Bind(deferred.Snapshot(counter), report("snapshot")), cfg.Demo.Delay); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := runner.RunDeferred(a, b, deferred.Sub[int], deferred.Bind(deferred.Handle(cell), report("handle")), cfg.Demo.Delay); err != nil {
		return fmt.Errorf("handle: %w", err)
	}

	counter += captureBump
	cell.Update(func(v int) int { return v + captureBump })
	fmt.Fprintf(out, "changed variable and cell to %d before delivery\n", counter)

	return runLoop(ctx, loop, func(ctx context.Context) error {
		_, err := delivered.Wait(ctx, 2)
		return err
	})
}
