package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gazeboard/internal/adapters/mq/queue"
	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/model"
)

// FrameDependencies accepts frames from a detector.
type FrameDependencies interface {
	// SubmitFrame validates and enqueues f. It fails with
	// eyemetrics.ErrMalformedFrame, queue.ErrFull or queue.ErrClosed.
	SubmitFrame(ctx context.Context, f model.Frame, source string) error
}

// FramesHandler handles frame ingest requests.
type FramesHandler struct {
	deps     FrameDependencies
	maxBytes int64
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps FrameDependencies, maxBytes int64) *FramesHandler {
	return &FramesHandler{deps: deps, maxBytes: maxBytes}
}

// HandlePostFrame handles POST /frames requests.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var f model.Frame
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := json.NewDecoder(body).Decode(&f); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.deps.SubmitFrame(r.Context(), f, "http")
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Seq: f.Seq})
	case errors.Is(err, eyemetrics.ErrMalformedFrame):
		writeError(w, http.StatusBadRequest, "malformed_frame", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
