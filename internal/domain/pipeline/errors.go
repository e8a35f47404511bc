package pipeline

import (
	"context"
	"errors"

	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/selection"
)

// ErrorKind maps a pipeline error to a short metric label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, eyemetrics.ErrMalformedFrame):
		return "malformed_frame"
	case errors.Is(err, eyemetrics.ErrDegenerateGeometry):
		return "degenerate_geometry"
	case errors.Is(err, selection.ErrScheduleUnlock):
		return "schedule_unlock"
	case errors.Is(err, selection.ErrClosed):
		return "closed"
	case errors.Is(err, selection.ErrInvalidGrid):
		return "invalid_grid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

// IsFatal reports whether err leaves the selection machine unusable.
func IsFatal(err error) bool {
	return errors.Is(err, selection.ErrScheduleUnlock) || errors.Is(err, selection.ErrClosed)
}
