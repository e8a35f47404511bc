package replay

import (
	"github.com/okian/gazeboard/internal/domain/model"
)

// Pupil midpoints as fractions of width, and eye openness ratios, used by
// the scripted steps.
const (
	rightX = 105.0 / 400
	leftX  = 300.0 / 400
	midX   = 200.0 / 400

	openness = 0.5
	closed   = 0.1
)

// Expectation is what GET /state must report after a step's frame has been
// processed.
type Expectation struct {
	FaceDetected bool
	Status       string
	Locked       bool
	// Columns of the active selection; nil when Locked is false.
	Columns []int
	// SameSelection requires the selection from the previous step.
	SameSelection bool
	// NewSelection requires a selection different from the previous one.
	NewSelection bool
}

// Step is one scripted frame and its expected effect.
type Step struct {
	Name string
	// AfterLock delays the step until Config.LockWait has passed since the
	// last selection.
	AfterLock bool
	Frame     func(width, height int, seq uint64) model.Frame
	Expect    Expectation
}

func gazeFrame(xFrac, ratio float64) func(int, int, uint64) model.Frame {
	return func(width, height int, seq uint64) model.Frame {
		return FrameAt(xFrac*float64(width), ratio, width, height, seq)
	}
}

// Scenario returns the scripted walk through the selection lifecycle:
// open eyes, a selecting blink, a suppressed blink, a lost face, and a
// blink after the lock expired.
func Scenario() []Step {
	return []Step{
		{
			Name:   "looking right, eyes open",
			Frame:  gazeFrame(rightX, openness),
			Expect: Expectation{FaceDetected: true, Status: "Looking Right"},
		},
		{
			Name:  "blink while looking right selects the right columns",
			Frame: gazeFrame(rightX, closed),
			Expect: Expectation{
				FaceDetected: true,
				Status:       "Looking Right + Blink",
				Locked:       true,
				Columns:      []int{0, 1, 2},
				NewSelection: true,
			},
		},
		{
			Name:  "blink while locked is suppressed",
			Frame: gazeFrame(leftX, closed),
			Expect: Expectation{
				FaceDetected:  true,
				Status:        "Looking Left + Blink",
				Locked:        true,
				Columns:       []int{0, 1, 2},
				SameSelection: true,
			},
		},
		{
			Name: "face lost keeps the lock",
			Frame: func(width, height int, seq uint64) model.Frame {
				return NoFace(width, height, seq)
			},
			Expect: Expectation{Locked: true, Columns: []int{0, 1, 2}, SameSelection: true},
		},
		{
			Name:      "blink at center after the lock expired",
			AfterLock: true,
			Frame:     gazeFrame(midX, closed),
			Expect: Expectation{
				FaceDetected: true,
				Status:       "Looking Center + Blink",
				Locked:       true,
				Columns:      []int{3, 4},
				NewSelection: true,
			},
		},
	}
}
