// Package selection turns confirmed gaze triggers into time-locked column
// selections on the symbol grid.
package selection

import (
	"github.com/okian/gazeboard/pkg/clock"
	"github.com/okian/gazeboard/pkg/logger"
)

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithClock sets the clock used for timestamps and the unlock timer.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets a custom logger for the machine.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIDGenerator overrides how selection event IDs are produced.
func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) {
		if gen != nil {
			m.newID = gen
		}
	}
}
