package eyemetrics

import "errors"

// Sentinel kinds for eye metric errors.
var (
	// ErrMalformedFrame means the frame does not carry the landmarks the
	// scheme requires. The detector always emits a full mesh when it finds
	// a face, so this is a precondition violation rather than a transient.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrDegenerateGeometry means an eye's contour cannot produce a finite
	// openness ratio (e.g. coincident eye corners).
	ErrDegenerateGeometry = errors.New("degenerate eye geometry")
)
