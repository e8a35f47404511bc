package replay

import (
	"context"
	"time"
)

// Defaults used by cmd/replay.
const (
	DefaultWidth    = 400
	DefaultHeight   = 300
	DefaultTick     = 100 * time.Millisecond
	DefaultLockWait = 31 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Config holds configuration for a replay run.
type Config struct {
	BaseURL string        // Base URL of the service
	Width   int           // Synthetic frame width in pixels
	Height  int           // Synthetic frame height in pixels
	Tick    time.Duration // Pause between frames, at least one service tick
	// LockWait is how long after a selection the follow-up blink is sent.
	LockWait   time.Duration
	Timeout    time.Duration // HTTP request and state polling timeout
	OutputFile string        // Optional JSON report path
	LogFile    string        // Log file for replay output
	Verbose    bool          // Enable verbose logging

	// Sleep waits for d or until ctx ends. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Width <= 0 {
		out.Width = DefaultWidth
	}
	if out.Height <= 0 {
		out.Height = DefaultHeight
	}
	if out.Tick <= 0 {
		out.Tick = DefaultTick
	}
	if out.LockWait <= 0 {
		out.LockWait = DefaultLockWait
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Sleep == nil {
		out.Sleep = sleep
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StepResult records one verified step.
type StepResult struct {
	Name     string        `json:"name"`
	Seq      uint64        `json:"seq"`
	Passed   bool          `json:"passed"`
	Error    string        `json:"error,omitempty"`
	Status   string        `json:"status"`
	Locked   bool          `json:"locked"`
	Columns  []int         `json:"columns,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats holds replay statistics.
type Stats struct {
	RunID        string        `json:"run_id"`
	FramesPosted int           `json:"frames_posted"`
	StepsPassed  int           `json:"steps_passed"`
	StepsFailed  int           `json:"steps_failed"`
	Steps        []StepResult  `json:"steps"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration_ns"`
}
