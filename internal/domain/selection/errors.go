package selection

import "errors"

var (
	// ErrScheduleUnlock is returned when the unlock timer could not be
	// armed. The machine stays Idle and no event is emitted.
	ErrScheduleUnlock = errors.New("failed to schedule unlock")
	// ErrClosed is returned by Trigger after Close.
	ErrClosed = errors.New("selection machine closed")
	// ErrInvalidGrid is returned for grids whose rows are not exactly
	// model.GridColumns wide.
	ErrInvalidGrid = errors.New("invalid symbol grid")
)
