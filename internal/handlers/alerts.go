package handlers

import (
	"net/http"
	"strconv"

	"github.com/evewatch/evewatch/internal/engine"
	"github.com/evewatch/evewatch/internal/httputil"
	"github.com/evewatch/evewatch/internal/logging"
	"github.com/evewatch/evewatch/internal/models"
)

// Handler serves the alert query API backed by the ingestion engine.
type Handler struct {
	engine       *engine.Engine
	logger       *logging.Logger
	defaultLimit int
	evePath      string
}

// New constructs a Handler. defaultLimit applies when /api/alerts is
// queried without an explicit limit parameter.
func New(eng *engine.Engine, logger *logging.Logger, defaultLimit int, evePath string) *Handler {
	return &Handler{
		engine:       eng,
		logger:       logger,
		defaultLimit: defaultLimit,
		evePath:      evePath,
	}
}

// Alerts handles GET /api/alerts?limit=N. Fetching triggers an
// ingestion pass, so new sensor alerts are stored automatically.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		// limit <= 0 returns the full bounded history
		limit = parsed
	}

	resp := h.engine.FetchAlerts(r.Context(), limit)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// AlertStats handles GET /api/alerts/stats. Stats reflect the history
// as of the last ingestion pass.
func (h *Handler) AlertStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.engine.FetchStats(r.Context()))
}

// ClearAlerts handles DELETE /api/alerts/clear.
func (h *Handler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.methodNotAllowed(w, http.MethodDelete)
		return
	}

	removed, err := h.engine.ClearHistory(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear alert history", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to clear alert history")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ClearResponse{
		Message: "alert history cleared",
		Removed: removed,
	})
}

// Health handles GET /api/health and /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"eve_path": h.evePath,
	})
}

// Ready handles GET /readyz.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
}
