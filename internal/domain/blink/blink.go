// Package blink decides whether the eyes are closed for the current frame.
package blink

import (
	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/model"
)

// Threshold is the combined openness ratio below which the eyes count as
// closed. Every frame is judged on its own, with no smoothing.
const Threshold = 0.2

// IsBlinking reports whether ratio denotes closed eyes.
func IsBlinking(ratio float64) bool {
	return ratio < Threshold
}

// Detect pairs the gaze direction with the blink decision. When neither
// eye produced a ratio the frame never counts as a blink.
func Detect(direction model.Direction, openness eyemetrics.Openness) model.EyeStatus {
	return model.EyeStatus{
		Direction: direction,
		Blinking:  openness.Known() && IsBlinking(openness.Average),
	}
}
