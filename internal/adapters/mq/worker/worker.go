// Package worker drives the pipeline on a fixed polling cadence.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gazeboard/internal/adapters/sink"
	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/internal/domain/pipeline"
	"github.com/okian/gazeboard/pkg/logger"
	"github.com/okian/gazeboard/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultInterval       = 100 * time.Millisecond
	runnerShutdownTimeout = 5 * time.Second

	// A backwards sequence jump at least this large means the frame
	// source restarted its numbering.
	seqResetGap = 1000
)

// Source yields the newest pending frame once per tick.
type Source interface {
	Latest(ctx context.Context) (model.Frame, int, bool)
}

// Processor runs one frame through the pipeline.
type Processor interface {
	Process(ctx context.Context, frame model.Frame) (pipeline.Result, error)
}

// Publisher receives pipeline output.
type Publisher interface {
	Publish(msg sink.Message)
}

// Last is the outcome of the most recent processed frame.
type Last struct {
	Seq    uint64
	Result pipeline.Result
	At     time.Time
}

// Runner samples the source on every tick and runs the pipeline to
// completion before the next tick. Ticks never overlap.
type Runner struct {
	source    Source
	processor Processor
	publisher Publisher
	interval  time.Duration
	name      string
	logger    logger.Logger

	// step serializes ticks between the loop and direct Step calls.
	step    sync.Mutex
	lastSeq uint64
	lastAt  time.Time

	mu      sync.RWMutex
	last    *Last
	err     error
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewRunner creates a runner with configuration options.
func NewRunner(source Source, processor Processor, publisher Publisher, opts ...Option) *Runner {
	r := &Runner{
		source:    source,
		processor: processor,
		publisher: publisher,
		interval:  defaultInterval,
		name:      "runner",
		logger:    logger.Get().Named("runner"),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name != "runner" {
		r.logger = r.logger.Named(r.name)
	}
	return r
}

// Start launches the tick loop. It returns immediately; the loop runs until
// ctx is cancelled, Stop is called, or a fatal pipeline error occurs.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info(ctx, "runner started", logger.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "runner stopped")
			return
		case <-ticker.C:
			if err := r.Step(ctx); err != nil {
				return
			}
		}
	}
}

// Step runs exactly one tick. It returns only fatal errors; per-frame
// failures are logged and counted. A fatal error halts the runner: it is
// kept for Err and returned by every later Step.
func (r *Runner) Step(ctx context.Context) error {
	r.step.Lock()
	defer r.step.Unlock()

	if err := r.Err(); err != nil {
		return err
	}
	err := r.tick(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	metrics.RecordErrorByComponent("runner", pipeline.ErrorKind(err))
	r.logger.Error(ctx, "runner halted on fatal error", logger.Error(err))
	return err
}

// restarted reports whether seq is a fresh numbering from a restarted
// source rather than a late frame.
func (r *Runner) restarted(seq uint64, now time.Time) bool {
	if seq >= r.lastSeq {
		return false
	}
	return r.lastSeq-seq >= seqResetGap || now.Sub(r.lastAt) > r.interval
}

func (r *Runner) tick(ctx context.Context) error {

	start := time.Now()
	defer func() {
		metrics.RecordTick(float64(time.Since(start).Microseconds()) / 1000)
	}()

	frame, _, ok := r.source.Latest(ctx)
	if !ok {
		return nil
	}
	if frame.Seq != 0 {
		if r.restarted(frame.Seq, time.Now()) {
			r.logger.Info(ctx, "frame source restarted",
				logger.Int("seq", int(frame.Seq)),
				logger.Int("last_seq", int(r.lastSeq)),
			)
			metrics.RecordErrorByComponent("runner", "seq_reset")
		} else if frame.Seq <= r.lastSeq {
			metrics.RecordFrameDropped("stale")
			r.logger.Debug(ctx, "dropping stale frame",
				logger.Int("seq", int(frame.Seq)),
				logger.Int("last_seq", int(r.lastSeq)),
			)
			return nil
		}
		r.lastSeq, r.lastAt = frame.Seq, time.Now()
	}

	res, err := r.processor.Process(ctx, frame)
	if err != nil {
		if pipeline.IsFatal(err) {
			return fmt.Errorf("tick %d: %w", frame.Seq, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.RecordErrorByComponent("runner", pipeline.ErrorKind(err))
		r.logger.Warn(ctx, "frame rejected", logger.Int("seq", int(frame.Seq)), logger.Error(err))
		return nil
	}

	now := time.Now()
	r.mu.Lock()
	r.last = &Last{Seq: frame.Seq, Result: res, At: now}
	r.mu.Unlock()

	if !res.FaceDetected {
		r.publisher.Publish(sink.NoFaceMessage(frame.Seq, now))
		return nil
	}
	var openness *float64
	if res.Openness.Known() {
		avg := res.Openness.Average
		openness = &avg
	}
	r.publisher.Publish(sink.StatusMessage(frame.Seq, res.Status, openness, now))
	if res.Event != nil {
		r.publisher.Publish(sink.SelectionMessage(frame.Seq, res.Event))
	}
	return nil
}

// Last returns the most recent processed frame outcome, if any.
func (r *Runner) Last() (Last, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Last{}, false
	}
	return *r.last, true
}

// Done is closed when the loop exits.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Err returns the fatal error that halted the runner, if any.
func (r *Runner) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Stop cancels the loop and waits for it to exit.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cancel, started := r.cancel, r.started
	r.mu.Unlock()
	if !started {
		return nil
	}
	cancel()

	select {
	case <-r.done:
		return nil
	case <-time.After(runnerShutdownTimeout):
		r.logger.Warn(context.Background(), "shutdown timed out")
		return fmt.Errorf("runner shutdown timed out after %s", runnerShutdownTimeout)
	}
}
