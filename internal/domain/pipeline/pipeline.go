// Package pipeline runs one landmark frame through eye metrics, gaze
// classification, blink detection and the selection machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gazeboard/internal/domain/blink"
	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/gaze"
	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/pkg/logger"
	"github.com/okian/gazeboard/pkg/metrics"
)

// Selector consumes classified statuses. *selection.Machine implements it.
type Selector interface {
	Trigger(ctx context.Context, status model.EyeStatus) (*model.SelectionEvent, error)
}

// Result is the outcome of one frame.
type Result struct {
	FaceDetected bool
	Status       model.EyeStatus
	Openness     eyemetrics.Openness
	// Event is set when this frame produced a selection.
	Event *model.SelectionEvent
	// Suppressed is true for a blink that arrived while a lock was held.
	Suppressed bool
	// Degenerate lists the per-eye geometry errors that were excluded.
	Degenerate []error
}

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithScheme sets the landmark index scheme.
func WithScheme(s eyemetrics.Scheme) Option {
	return func(p *Processor) { p.scheme = s }
}

// WithLogger sets a custom logger for the processor.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// Processor is stateless apart from the selector it feeds.
type Processor struct {
	scheme   eyemetrics.Scheme
	selector Selector
	logger   logger.Logger
}

// New returns a Processor feeding selector.
func New(selector Selector, opts ...Option) *Processor {
	p := &Processor{
		scheme:   eyemetrics.MediaPipe,
		selector: selector,
		logger:   logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs frame through the pipeline. A frame without a face yields a
// zero Result and no error. Malformed frames fail with
// eyemetrics.ErrMalformedFrame and produce no status.
func (p *Processor) Process(ctx context.Context, frame model.Frame) (Result, error) {
	if !frame.HasFace() {
		metrics.RecordMissingFace()
		return Result{}, nil
	}

	eyes, err := eyemetrics.Extract(frame, p.scheme)
	if err != nil {
		metrics.RecordPipelineError(ErrorKind(err))
		return Result{}, err
	}

	res := Result{FaceDetected: true}
	direction := gaze.ClassifyPupils(eyes.LeftPupil, eyes.RightPupil, frame.Width)

	openness, errs := eyemetrics.Measure(eyes)
	res.Openness = openness
	res.Degenerate = errs
	if !openness.LeftKnown {
		metrics.RecordDegenerateEye("left")
	}
	if !openness.RightKnown {
		metrics.RecordDegenerateEye("right")
	}
	if len(errs) > 0 {
		p.logger.Debug(ctx, "eye excluded from blink decision",
			logger.Int("seq", int(frame.Seq)),
			logger.Error(errors.Join(errs...)),
		)
	}
	if openness.Known() {
		metrics.RecordEyeOpenness(openness.Average)
	}

	res.Status = blink.Detect(direction, openness)
	metrics.RecordGaze(direction.String())
	if res.Status.Blinking {
		metrics.RecordBlink()
	}

	ev, err := p.selector.Trigger(ctx, res.Status)
	if err != nil {
		metrics.RecordPipelineError(ErrorKind(err))
		return res, fmt.Errorf("trigger: %w", err)
	}
	switch {
	case ev != nil:
		res.Event = ev
		metrics.RecordSelection(ev.Direction.String())
	case res.Status.Blinking:
		res.Suppressed = true
		metrics.RecordSuppressedTrigger()
	}
	return res, nil
}
