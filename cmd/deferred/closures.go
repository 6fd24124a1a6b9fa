package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hackebrot/go-deferred/internal/config"
	"github.com/hackebrot/go-deferred/pkg/deferred"
)

// runClosures prints each step of an immediate addition and a deferred subtraction.
// Both results are computed before the call returns; only the subtraction is delivered later.
func runClosures(ctx context.Context, cfg config.Config, out io.Writer) error {
	loop := newEventLoop(cfg.Loop)
	runner := deferred.NewRunner[int](loop)
	delivered := deferred.NewRecorder[int]()

	a, b := cfg.Demo.A, cfg.Demo.B

	fmt.Fprintln(out, "Step 1: Starting Addition")
	add := func(x, y int) int {
		fmt.Fprintln(out, "Step 2: Calculating Sum")
		return x + y
	}
	err := runner.RunImmediate(a, b, add, func(result int) {
		fmt.Fprintf(out, "Step 3: Result of addition is %d\n", result)
	})
	if err != nil {
		return fmt.Errorf("addition: %w", err)
	}
	fmt.Fprintln(out, "Final Step: Addition Completed")

	fmt.Fprintln(out, "Step 1: Starting Subtraction")
	sub := func(x, y int) int {
		fmt.Fprintln(out, "Step 2: Preparing to Subtract")
		return x - y
	}
	err = runner.RunDeferred(a, b, sub, func(result int) {
		fmt.Fprintln(out, "Step 3: Performing Subtraction")
		fmt.Fprintf(out, "Step 4: Result of subtraction is %d\n", result)
		delivered.Record("sub", result)
	}, cfg.Demo.Delay)
	if err != nil {
		return fmt.Errorf("subtraction: %w", err)
	}
	fmt.Fprintf(out, "Final Step: Subtraction Requested (Waiting %v...)\n", cfg.Demo.Delay)

	return runLoop(ctx, loop, func(ctx context.Context) error {
		_, err := delivered.Wait(ctx, 1)
		return err
	})
}
