package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/gazeboard/internal/adapters/repository"
	"github.com/okian/gazeboard/internal/domain/model"
)

const (
	defaultSelectionLimit = 20
	maxSelectionLimit     = 256
)

// SelectionDependencies reads the selection history.
type SelectionDependencies interface {
	RecentSelections(ctx context.Context, n int) ([]model.SelectionEvent, error)
	Selection(ctx context.Context, id string) (model.SelectionEvent, error)
}

// SelectionsHandler handles selection history requests.
type SelectionsHandler struct {
	deps     SelectionDependencies
	maxLimit int
}

// NewSelectionsHandler creates a new selections handler.
func NewSelectionsHandler(deps SelectionDependencies, maxLimit int) *SelectionsHandler {
	return &SelectionsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetSelections handles GET /selections?limit=N requests. The limit
// defaults to 20.
func (h *SelectionsHandler) HandleGetSelections(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_selections"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultSelectionLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	events, err := h.deps.RecentSelections(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrUnavailable, err))
		return
	}
	if events == nil {
		events = []model.SelectionEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleGetSelection handles GET /selections/{id} requests.
func (h *SelectionsHandler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_selection"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/selections/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	ev, err := h.deps.Selection(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ev)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
