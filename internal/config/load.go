package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// fileConfig mirrors the on-disk layout. Pointers distinguish an explicit
// zero value from a missing key.
type fileConfig struct {
	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`

	Loop struct {
		Strategy      string `yaml:"strategy" toml:"strategy"`
		CheckInterval string `yaml:"check_interval" toml:"check_interval"`
		StopWhenIdle  *bool  `yaml:"stop_when_idle" toml:"stop_when_idle"`
	} `yaml:"loop" toml:"loop"`

	Demo struct {
		A *int `yaml:"a" toml:"a"`
		B *int `yaml:"b" toml:"b"`
		// Go duration format: "3s", "250ms", "1m"
		Delay     string `yaml:"delay" toml:"delay"`
		FibCount  *int   `yaml:"fib_count" toml:"fib_count"`
		MaxOffset string `yaml:"max_offset" toml:"max_offset"`
	} `yaml:"demo" toml:"demo"`
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file and fills in defaults
// for every missing setting. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(cleanPath)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg, err := fc.resolve()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (fc fileConfig) resolve() (Config, error) {
	level, err := ParseLevel(cmp.Or(fc.Log.Level, DefaultLogLevel))
	if err != nil {
		return Config{}, err
	}

	checkInterval, err := parseDuration(fc.Loop.CheckInterval, scheduler.DefaultCheckInterval)
	if err != nil {
		return Config{}, fmt.Errorf("loop check interval: %w", err)
	}

	delay, err := parseDuration(fc.Demo.Delay, DefaultDelay)
	if err != nil {
		return Config{}, fmt.Errorf("demo delay: %w", err)
	}

	maxOffset, err := parseDuration(fc.Demo.MaxOffset, DefaultMaxOffset)
	if err != nil {
		return Config{}, fmt.Errorf("demo max offset: %w", err)
	}

	return Config{
		Log: Log{
			Level:  level,
			Format: cmp.Or(strings.ToLower(fc.Log.Format), DefaultLogFormat),
		},
		Loop: Loop{
			Strategy:      cmp.Or(strings.ToLower(fc.Loop.Strategy), DefaultStrategy),
			CheckInterval: checkInterval,
			StopWhenIdle:  valueOr(fc.Loop.StopWhenIdle, DefaultStopWhenIdle),
		},
		Demo: Demo{
			A:         valueOr(fc.Demo.A, DefaultA),
			B:         valueOr(fc.Demo.B, DefaultB),
			Delay:     delay,
			FibCount:  valueOr(fc.Demo.FibCount, DefaultFibCount),
			MaxOffset: maxOffset,
		},
	}, nil
}

// valueOr returns *p, or def when p is nil.
func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return d, nil
}
