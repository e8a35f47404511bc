// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPoint is returned when a landmark cannot be decoded.
var ErrInvalidPoint = errors.New("invalid landmark point")

// Point is a landmark position in source-frame pixel space. Z is carried
// through from 3D detectors but never used by the classifiers.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Finite reports whether every coordinate is a finite number.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Distance2D returns the Euclidean distance between p and q in the image
// plane.
func (p Point) Distance2D(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// MarshalJSON encodes the point as [x, y, z], the shape detectors emit.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// UnmarshalJSON accepts [x, y] or [x, y, z].
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPoint, err)
	}
	switch len(coords) {
	case 2:
		*p = Point{X: coords[0], Y: coords[1]}
	case 3:
		*p = Point{X: coords[0], Y: coords[1], Z: coords[2]}
	default:
		return fmt.Errorf("%w: want 2 or 3 coordinates, got %d", ErrInvalidPoint, len(coords))
	}
	return nil
}

// Frame is one detection tick: the landmarks of the single tracked face
// (empty when no face was found) and the size of the source image.
// Frames are immutable once produced.
type Frame struct {
	// Seq orders frames from one detector. Zero means unordered.
	Seq        uint64    `json:"seq,omitempty"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Landmarks  []Point   `json:"landmarks"`
	CapturedAt time.Time `json:"captured_at,omitempty"`
}

// HasFace reports whether the detector found a face for this tick.
func (f Frame) HasFace() bool {
	return len(f.Landmarks) > 0
}
