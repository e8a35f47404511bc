// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/gazeboard/internal/domain/model"
)

// Default request limits.
const (
	defaultMaxFrameBytes = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FrameDependencies
	StateDependencies
	CategoryDependencies
	SelectionDependencies
}

// State is the read model served on GET /state.
type State struct {
	Status       string                `json:"status"`
	FaceDetected bool                  `json:"face_detected"`
	Seq          uint64                `json:"seq,omitempty"`
	Locked       bool                  `json:"locked"`
	UnlockAt     *time.Time            `json:"unlock_at,omitempty"`
	Category     string                `json:"category"`
	Selection    *model.SelectionEvent `json:"selection,omitempty"`
	Grid         model.Grid            `json:"grid"`
	Running      bool                  `json:"running"`
	Error        string                `json:"error,omitempty"`
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	framesHandler     *FramesHandler
	stateHandler      *StateHandler
	categoriesHandler *CategoriesHandler
	selectionsHandler *SelectionsHandler
}

// ServerOption configures the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxFrameBytes int64
}

// WithMaxFrameBytes caps the POST /frames body size.
func WithMaxFrameBytes(n int64) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxFrameBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxFrameBytes: defaultMaxFrameBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		framesHandler:     NewFramesHandler(deps, cfg.maxFrameBytes),
		stateHandler:      NewStateHandler(deps),
		categoriesHandler: NewCategoriesHandler(deps),
		selectionsHandler: NewSelectionsHandler(deps, maxSelectionLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/frames", MetricsMiddleware(s.framesHandler.HandlePostFrame, "frames"))
	mux.HandleFunc("/state", MetricsMiddleware(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("/categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/category", MetricsMiddleware(s.categoriesHandler.HandlePostCategory, "category"))
	mux.HandleFunc("/selections", MetricsMiddleware(s.selectionsHandler.HandleGetSelections, "selections"))
	mux.HandleFunc("/selections/", MetricsMiddleware(s.selectionsHandler.HandleGetSelection, "selection"))
}

type ackResponse struct {
	Status string `json:"status"`
	Seq    uint64 `json:"seq,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
