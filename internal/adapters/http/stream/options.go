package stream

import (
	"time"

	"github.com/okian/gazeboard/pkg/logger"
)

// Option configures a Handler.
type Option func(*Handler)

// WithWriteTimeout bounds each write, pings included.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithPongWait sets how long a silent client is kept. Pings go out at 90%
// of this.
func WithPongWait(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pongWait = d
		}
	}
}

// WithMaxMessageBytes caps inbound message size.
func WithMaxMessageBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxMessage = n
		}
	}
}

// WithBuffer sets the per-client hub subscription buffer.
func WithBuffer(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}
