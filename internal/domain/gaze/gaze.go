// Package gaze buckets the horizontal pupil position into a gaze direction.
package gaze

import "github.com/okian/gazeboard/internal/domain/model"

// Thresholds as fractions of frame width. The band between them is a dead
// zone reported as Center.
const (
	LowerBound = 0.35
	UpperBound = 0.65
)

// Classify returns the gaze direction for the pupils' horizontal midpoint.
// The front camera mirrors the image, so a midpoint in the left part of the
// frame means the user is looking to their right, and vice versa.
func Classify(leftPupilX, rightPupilX, width float64) model.Direction {
	avgX := (leftPupilX + rightPupilX) / 2
	switch {
	case avgX < LowerBound*width:
		return model.Right
	case avgX > UpperBound*width:
		return model.Left
	default:
		return model.Center
	}
}

// ClassifyPupils is Classify for landmark points.
func ClassifyPupils(left, right model.Point, width int) model.Direction {
	return Classify(left.X, right.X, float64(width))
}
