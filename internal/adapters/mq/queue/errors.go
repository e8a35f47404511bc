package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("frame queue full")
	ErrClosed = errors.New("frame queue closed")
)
