package replay

import (
	"time"

	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/model"
)

// Synthetic face geometry, as fractions of frame width.
const (
	pupilSpread = 0.05 // half distance between the pupils
	eyeWidth    = 0.06 // corner to corner

	openRatio  = 0.3
	blinkRatio = 0.1
)

// GazeX returns a pupil midpoint, in pixels, that classifies as d on a
// mirrored camera.
func GazeX(d model.Direction, width int) float64 {
	w := float64(width)
	switch d {
	case model.Right:
		return 0.25 * w
	case model.Left:
		return 0.75 * w
	default:
		return 0.5 * w
	}
}

// Synthesize builds a full MediaPipe landmark frame whose pupils classify
// as direction and whose eyes are open or closed.
func Synthesize(direction model.Direction, blinking bool, width, height int, seq uint64) model.Frame {
	ratio := openRatio
	if blinking {
		ratio = blinkRatio
	}
	return FrameAt(GazeX(direction, width), ratio, width, height, seq)
}

// FrameAt builds a MediaPipe landmark frame with the pupil midpoint at avgX
// pixels and both eyes at the given openness ratio.
func FrameAt(avgX, ratio float64, width, height int, seq uint64) model.Frame {
	scheme := eyemetrics.MediaPipe
	w := float64(width)
	cy := float64(height) / 2

	pts := make([]model.Point, scheme.Required())
	// Unused mesh points sit at the face centre.
	for i := range pts {
		pts[i] = model.Point{X: avgX, Y: cy}
	}

	leftX := avgX - pupilSpread*w
	rightX := avgX + pupilSpread*w
	pts[scheme.LeftPupil] = model.Point{X: leftX, Y: cy}
	pts[scheme.RightPupil] = model.Point{X: rightX, Y: cy}

	left := eyeContour(leftX, cy, eyeWidth*w, ratio)
	right := eyeContour(rightX, cy, eyeWidth*w, ratio)
	for i := 0; i < eyemetrics.EyeContourPoints; i++ {
		pts[scheme.LeftEye[i]] = left[i]
		pts[scheme.RightEye[i]] = right[i]
	}

	return model.Frame{
		Seq:        seq,
		Width:      width,
		Height:     height,
		Landmarks:  pts,
		CapturedAt: time.Now().UTC(),
	}
}

// NoFace returns a frame in which the detector found nothing.
func NoFace(width, height int, seq uint64) model.Frame {
	return model.Frame{Seq: seq, Width: width, Height: height, CapturedAt: time.Now().UTC()}
}

// eyeContour lays out six points in P0..P5 order: outer corner, two upper
// lid points, inner corner, two lower lid points. The lids sit ratio*span/2
// off the corner line, which gives exactly ratio.
func eyeContour(cx, cy, span, ratio float64) eyemetrics.EyePoints {
	h := ratio * span / 2
	x0 := cx - span/2
	third := span / 3
	return eyemetrics.EyePoints{
		{X: x0, Y: cy},
		{X: x0 + third, Y: cy - h},
		{X: x0 + 2*third, Y: cy - h},
		{X: x0 + span, Y: cy},
		{X: x0 + 2*third, Y: cy + h},
		{X: x0 + third, Y: cy + h},
	}
}
