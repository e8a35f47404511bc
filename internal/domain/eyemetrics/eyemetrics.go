// Package eyemetrics extracts pupils and eye contours from a landmark frame
// and computes how open each eye is.
package eyemetrics

import (
	"fmt"
	"math"

	"github.com/okian/gazeboard/internal/domain/model"
)

// EyeContourPoints is the size of the six-point eye model.
const EyeContourPoints = 6

// EyePoints is one eye's contour: P0 outer corner, P1 and P2 upper lid,
// P3 inner corner, P4 and P5 lower lid.
type EyePoints [EyeContourPoints]model.Point

// EyePointsFrom converts a slice into EyePoints. Anything other than
// exactly six points is a malformed frame.
func EyePointsFrom(points []model.Point) (EyePoints, error) {
	var eye EyePoints
	if len(points) != EyeContourPoints {
		return eye, fmt.Errorf("eye contour has %d points, want %d: %w", len(points), EyeContourPoints, ErrMalformedFrame)
	}
	copy(eye[:], points)
	return eye, nil
}

// Eyes holds the landmarks of both eyes for one frame.
type Eyes struct {
	LeftPupil  model.Point
	RightPupil model.Point
	LeftEye    EyePoints
	RightEye   EyePoints
}

// Extract picks the scheme's landmarks out of frame.
func Extract(frame model.Frame, scheme Scheme) (Eyes, error) {
	if frame.Width <= 0 {
		return Eyes{}, fmt.Errorf("frame width %d: %w", frame.Width, ErrMalformedFrame)
	}
	if need := scheme.Required(); len(frame.Landmarks) < need {
		return Eyes{}, fmt.Errorf("frame has %d landmarks, scheme needs %d: %w", len(frame.Landmarks), need, ErrMalformedFrame)
	}

	pts := frame.Landmarks
	eyes := Eyes{
		LeftPupil:  pts[scheme.LeftPupil],
		RightPupil: pts[scheme.RightPupil],
	}
	for i := 0; i < EyeContourPoints; i++ {
		eyes.LeftEye[i] = pts[scheme.LeftEye[i]]
		eyes.RightEye[i] = pts[scheme.RightEye[i]]
	}
	if !eyes.LeftPupil.Finite() || !eyes.RightPupil.Finite() {
		return Eyes{}, fmt.Errorf("pupil coordinates not finite: %w", ErrMalformedFrame)
	}
	return eyes, nil
}

// OpennessRatio returns (|P1-P5| + |P2-P4|) / (2 |P0-P3|). The ratio falls
// as the lids close.
func OpennessRatio(eye EyePoints) (float64, error) {
	a := eye[1].Distance2D(eye[5])
	b := eye[2].Distance2D(eye[4])
	c := eye[0].Distance2D(eye[3])
	if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, fmt.Errorf("corner distance %v: %w", c, ErrDegenerateGeometry)
	}
	ratio := (a + b) / (2 * c)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, fmt.Errorf("ratio %v: %w", ratio, ErrDegenerateGeometry)
	}
	return ratio, nil
}

// Openness is the per-eye and combined openness for one frame. An eye whose
// geometry was degenerate is marked unknown and left out of Average.
type Openness struct {
	Left       float64
	Right      float64
	LeftKnown  bool
	RightKnown bool
	Average    float64
}

// Known reports whether at least one eye produced a ratio.
func (o Openness) Known() bool {
	return o.LeftKnown || o.RightKnown
}

// Measure computes the openness of both eyes. The returned errors list the
// eyes that were excluded; Openness is still usable when one eye survives.
func Measure(eyes Eyes) (Openness, []error) {
	var (
		o    Openness
		errs []error
		err  error
	)
	if o.Left, err = OpennessRatio(eyes.LeftEye); err == nil {
		o.LeftKnown = true
	} else {
		errs = append(errs, fmt.Errorf("left eye: %w", err))
	}
	if o.Right, err = OpennessRatio(eyes.RightEye); err == nil {
		o.RightKnown = true
	} else {
		errs = append(errs, fmt.Errorf("right eye: %w", err))
	}

	switch {
	case o.LeftKnown && o.RightKnown:
		o.Average = (o.Left + o.Right) / 2
	case o.LeftKnown:
		o.Average = o.Left
	case o.RightKnown:
		o.Average = o.Right
	}
	return o, errs
}
