package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/gazeboard/internal/domain/selection"
	"github.com/okian/gazeboard/internal/domain/symbols"
)

// CategoryDependencies lists and switches symbol categories.
type CategoryDependencies interface {
	Categories(ctx context.Context) []string
	ActiveCategory(ctx context.Context) string
	SetCategory(ctx context.Context, name string) error
}

// CategoriesHandler handles category requests.
type CategoriesHandler struct {
	deps CategoryDependencies
}

type categoriesResponse struct {
	Active     string   `json:"active"`
	Categories []string `json:"categories"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoryDependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

// HandleGetCategories handles GET /categories requests.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Active:     h.deps.ActiveCategory(r.Context()),
		Categories: h.deps.Categories(r.Context()),
	})
}

// HandlePostCategory handles POST /category requests.
func (h *CategoriesHandler) HandlePostCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_category"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	err := h.deps.SetCategory(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, categoriesResponse{
			Active:     h.deps.ActiveCategory(r.Context()),
			Categories: h.deps.Categories(r.Context()),
		})
	case errors.Is(err, symbols.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, selection.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
