package main

import (
	"log/slog"
	"slices"
	"time"

	"github.com/hackebrot/go-deferred/pkg/scheduler"
)

// summary holds execution statistics for successful tasks.
type summary struct {
	Count    int
	Failed   int
	Mean     time.Duration
	Median   time.Duration
	Min      time.Duration
	Max      time.Duration
	MaxDelay time.Duration // Largest gap between a task's scheduled time and its start
}

// processResults logs task results and computes summary statistics for successful executions.
func processResults(results []scheduler.TaskResult) summary {
	var s summary
	var durations []time.Duration
	for _, result := range results {
		duration := result.EndTime.Sub(result.StartTime)
		s.MaxDelay = max(s.MaxDelay, result.Lateness())

		args := []any{
			"task_id", result.TaskID,
			"worker_id", result.WorkerID,
			"duration_microseconds", duration.Microseconds(),
			"lateness_microseconds", result.Lateness().Microseconds(),
		}

		if result.Error != nil {
			s.Failed++
			args = append(args, "error", result.Error)
			slog.Error("error executing task", args...)
		} else {
			durations = append(durations, duration)
			slog.Info("task completed", args...)
		}
	}

	if len(durations) == 0 {
		return s
	}

	slices.Sort(durations)

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	s.Count = len(durations)
	// Convert len to time.Duration for division to get mean duration
	s.Mean = total / time.Duration(len(durations))
	s.Median = durations[len(durations)/2]
	s.Min = durations[0]
	s.Max = durations[len(durations)-1]

	slog.Info(
		"task execution summary",
		"count", s.Count,
		"failed", s.Failed,
		"mean_microseconds", s.Mean.Microseconds(),
		"median_microseconds", s.Median.Microseconds(),
		"min_microseconds", s.Min.Microseconds(),
		"max_microseconds", s.Max.Microseconds(),
		"max_lateness_microseconds", s.MaxDelay.Microseconds(),
	)

	return s
}
