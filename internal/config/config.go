// Package config loads settings for the deferred command from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// Default values used for every setting a file leaves out.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultStopWhenIdle = true
	DefaultStrategy     = StrategyHeap
	DefaultA            = 7
	DefaultB            = 2
	DefaultDelay        = 3 * time.Second
	DefaultFibCount     = 10
	DefaultMaxOffset    = 5 * time.Second
)

// Event loop strategies.
const (
	StrategyHeap    = "heap"    // sleep until the earliest pending task
	StrategyPolling = "polling" // check for ready tasks every CheckInterval
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved configuration.
type Config struct {
	Log  Log
	Loop Loop
	Demo Demo
}

// Log selects the slog handler and its minimum level.
type Log struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// Loop chooses the event loop strategy used by every command.
type Loop struct {
	Strategy      string
	CheckInterval time.Duration // Only used by the polling strategy
	StopWhenIdle  bool          // Stop the event loop once nothing is pending
}

// Demo holds the operands and timings the CLI scenarios run with.
type Demo struct {
	A         int
	B         int
	Delay     time.Duration // Delay before the subtraction result is delivered
	FibCount  int           // Number of Fibonacci tasks scheduled by the fib command
	MaxOffset time.Duration // Upper bound for the random start offset of Fibonacci tasks
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: Log{
			Level:  slog.LevelInfo,
			Format: DefaultLogFormat,
		},
		Loop: Loop{
			Strategy:      DefaultStrategy,
			CheckInterval: scheduler.DefaultCheckInterval,
			StopWhenIdle:  DefaultStopWhenIdle,
		},
		Demo: Demo{
			A:         DefaultA,
			B:         DefaultB,
			Delay:     DefaultDelay,
			FibCount:  DefaultFibCount,
			MaxOffset: DefaultMaxOffset,
		},
	}
}

// Validate checks that values are usable.
func (c Config) Validate() error {
	var errs []error

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalidConfig, c.Log.Format))
	}
	if c.Loop.Strategy != StrategyHeap && c.Loop.Strategy != StrategyPolling {
		errs = append(errs, fmt.Errorf("%w: loop strategy must be heap or polling, got %q", ErrInvalidConfig, c.Loop.Strategy))
	}
	if c.Loop.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: check interval must be positive, got %v", ErrInvalidConfig, c.Loop.CheckInterval))
	}
	if c.Demo.Delay < 0 {
		errs = append(errs, fmt.Errorf("%w: demo delay must not be negative, got %v", ErrInvalidConfig, c.Demo.Delay))
	}
	if c.Demo.FibCount < 0 {
		errs = append(errs, fmt.Errorf("%w: fib count must not be negative, got %d", ErrInvalidConfig, c.Demo.FibCount))
	}
	if c.Demo.MaxOffset < 0 {
		errs = append(errs, fmt.Errorf("%w: max offset must not be negative, got %v", ErrInvalidConfig, c.Demo.MaxOffset))
	}

	return errors.Join(errs...)
}

// ParseLevel converts a level name such as "debug" or "warn" to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}
