package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDirection is returned when a direction name cannot be parsed.
var ErrUnknownDirection = errors.New("unknown gaze direction")

// Direction is the coarse horizontal gaze classification, expressed from
// the user's point of view.
type Direction int

// Gaze directions. The zero value is Center.
const (
	Center Direction = iota
	Left
	Right
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Left, Center, Right}

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Center:
		return "Center"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the three known directions.
func (d Direction) Valid() bool {
	return d == Left || d == Center || d == Right
}

// ParseDirection parses "left", "center" or "right" (any case).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "center":
		return Center, nil
	case "right":
		return Right, nil
	}
	return Center, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EyeStatus is the per-frame classification shown to the user and used as
// the selection trigger.
type EyeStatus struct {
	Direction Direction `json:"direction"`
	Blinking  bool      `json:"blinking"`
}

// String renders the status line, e.g. "Looking Left + Blink".
func (s EyeStatus) String() string {
	if s.Blinking {
		return "Looking " + s.Direction.String() + " + Blink"
	}
	return "Looking " + s.Direction.String()
}
