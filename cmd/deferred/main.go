package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hackebrot/go-deferred/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal")
		cancel()
	}()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newApp builds the CLI. Scenario output goes to out, logs go to logOut.
func newApp(out, logOut io.Writer) *cli.App {
	cfg := config.Default()

	demoFlags := []cli.Flag{
		&cli.IntFlag{Name: "a", Usage: "First operand"},
		&cli.IntFlag{Name: "b", Usage: "Second operand"},
		&cli.DurationFlag{Name: "delay", Usage: "Delay before the deferred result is delivered"},
	}

	return &cli.App{
		Name:      "deferred",
		Usage:     "Run operations now and deliver their results to callbacks, immediately or later",
		Writer:    out,
		ErrWriter: logOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.yaml, .yml or .toml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json (overrides config)",
			},
		},
		Before: func(c *cli.Context) error {
			loaded, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			cfg = loaded
			slog.SetDefault(newLogger(cfg.Log, logOut))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "closures",
				Usage: "Deliver a sum immediately and a difference after a delay",
				Flags: demoFlags,
				Action: func(c *cli.Context) error {
					run, err := applyDemoFlags(c, cfg)
					if err != nil {
						return err
					}
					return runClosures(c.Context, run, out)
				},
			},
			{
				Name:  "capture",
				Usage: "Compare snapshot and handle captures mutated before delivery",
				Flags: demoFlags,
				Action: func(c *cli.Context) error {
					run, err := applyDemoFlags(c, cfg)
					if err != nil {
						return err
					}
					return runCapture(c.Context, run, out)
				},
			},
			{
				Name:  "fib",
				Usage: "Schedule Fibonacci tasks at random offsets and summarize their execution",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Usage: "Number of tasks to schedule"},
					&cli.DurationFlag{Name: "max-offset", Usage: "Upper bound for random start offsets"},
				},
				Action: func(c *cli.Context) error {
					run := cfg
					if c.IsSet("count") {
						run.Demo.FibCount = c.Int("count")
					}
					if c.IsSet("max-offset") {
						run.Demo.MaxOffset = c.Duration("max-offset")
					}
					if err := run.Validate(); err != nil {
						return err
					}
					_, err := runFib(c.Context, run)
					return err
				},
			},
		},
	}
}

// loadConfigWithOverrides loads configuration and applies global flag overrides
func loadConfigWithOverrides(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("log-level") {
		level, err := config.ParseLevel(c.String("log-level"))
		if err != nil {
			return cfg, err
		}
		cfg.Log.Level = level
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}

	return cfg, cfg.Validate()
}

// applyDemoFlags applies command flag overrides and validates the result.
func applyDemoFlags(c *cli.Context, cfg config.Config) (config.Config, error) {
	if c.IsSet("a") {
		cfg.Demo.A = c.Int("a")
	}
	if c.IsSet("b") {
		cfg.Demo.B = c.Int("b")
	}
	if c.IsSet("delay") {
		cfg.Demo.Delay = c.Duration("delay")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
