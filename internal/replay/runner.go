package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gazeboard/internal/adapters/http/api"
	"github.com/okian/gazeboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// ErrVerification is returned when at least one step did not match.
var ErrVerification = errors.New("replay verification failed")

// Run posts the scripted scenario to a running service and verifies GET
// /state after every step.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := logger.Get().Named("replay")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	log.Info(ctx, "starting replay",
		logger.String("run_id", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("width", cfg.Width),
		logger.Int("height", cfg.Height),
		logger.Duration("tick", cfg.Tick),
		logger.Duration("lock_wait", cfg.LockWait))

	if err := client.healthy(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := waitUnlocked(ctx, &cfg, client, log); err != nil {
		return stats, err
	}

	// Sequence numbers only grow, so each run starts above the last.
	base := uint64(time.Now().UnixMilli()) * 1000
	var (
		prevID   string
		lockedAt time.Time
	)
	for i, step := range Scenario() {
		if step.AfterLock {
			wait := cfg.LockWait - time.Since(lockedAt)
			log.Info(ctx, "waiting for the lock to expire", logger.Duration("wait", wait))
			if err := cfg.Sleep(ctx, wait); err != nil {
				return stats, err
			}
		}

		seq := base + uint64(i) + 1
		res, st, err := runStep(ctx, &cfg, client, step, seq, prevID)
		stats.FramesPosted++
		if err != nil {
			return stats, fmt.Errorf("step %q: %w", step.Name, err)
		}
		stats.Steps = append(stats.Steps, res)

		if res.Passed {
			stats.StepsPassed++
			log.Info(ctx, "step passed", logger.String("step", step.Name), logger.String("status", res.Status))
		} else {
			stats.StepsFailed++
			log.Error(ctx, "step failed", logger.String("step", step.Name), logger.String("reason", res.Error))
		}
		if cfg.Verbose {
			log.Debug(ctx, "state", logger.Any("state", st))
		}

		if st.Selection != nil {
			if st.Selection.ID != prevID {
				lockedAt = time.Now()
			}
			prevID = st.Selection.ID
		}

		if err := sleep(ctx, cfg.Tick); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, stats); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	if stats.StepsFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d steps", ErrVerification, stats.StepsFailed, len(stats.Steps))
	}
	return stats, nil
}

func runStep(ctx context.Context, cfg *Config, client *HTTPClient, step Step, seq uint64, prevID string) (StepResult, api.State, error) {
	start := time.Now()
	if err := client.postFrame(ctx, step.Frame(cfg.Width, cfg.Height, seq)); err != nil {
		return StepResult{}, api.State{}, err
	}
	st, err := waitForSeq(ctx, cfg, client, seq)
	if err != nil {
		return StepResult{}, st, err
	}

	res := StepResult{
		Name:     step.Name,
		Seq:      seq,
		Status:   st.Status,
		Locked:   st.Locked,
		Duration: time.Since(start),
	}
	if st.Selection != nil {
		res.Columns = st.Selection.Columns
	}
	if err := verifyState(step.Expect, st, prevID); err != nil {
		res.Error = err.Error()
	} else {
		res.Passed = true
	}
	return res, st, nil
}

// waitForSeq polls GET /state until the service has processed seq.
func waitForSeq(ctx context.Context, cfg *Config, client *HTTPClient, seq uint64) (api.State, error) {
	deadline := time.Now().Add(cfg.Timeout)
	for {
		st, err := client.state(ctx)
		if err != nil {
			return st, err
		}
		if st.Seq >= seq {
			return st, nil
		}
		if st.Error != "" {
			return st, fmt.Errorf("service halted: %s", st.Error)
		}
		if time.Now().After(deadline) {
			return st, fmt.Errorf("frame %d not processed within %s (last seq %d)", seq, cfg.Timeout, st.Seq)
		}
		if err := sleep(ctx, cfg.Tick); err != nil {
			return st, err
		}
	}
}

// waitUnlocked lets a lock left by an earlier run expire.
func waitUnlocked(ctx context.Context, cfg *Config, client *HTTPClient, log logger.Logger) error {
	st, err := client.state(ctx)
	if err != nil {
		return err
	}
	if !st.Locked {
		return nil
	}
	log.Info(ctx, "service is locked; waiting for it to unlock", logger.Duration("wait", cfg.LockWait))
	if err := cfg.Sleep(ctx, cfg.LockWait); err != nil {
		return err
	}
	if st, err = client.state(ctx); err != nil {
		return err
	}
	if st.Locked {
		return errors.New("service still locked after the lock duration")
	}
	return nil
}

// saveReport writes stats as indented JSON.
func saveReport(filename string, stats *Stats) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, reportPermission)
}

// displayFinalStats logs the final replay statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.String("run_id", stats.RunID),
		logger.Int("framesPosted", stats.FramesPosted),
		logger.Int("stepsPassed", stats.StepsPassed),
		logger.Int("stepsFailed", stats.StepsFailed),
		logger.Duration("duration", stats.Duration))
}
