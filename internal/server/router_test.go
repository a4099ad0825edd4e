package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evewatch/evewatch/internal/engine"
	"github.com/evewatch/evewatch/internal/handlers"
	"github.com/evewatch/evewatch/internal/history"
	"github.com/evewatch/evewatch/internal/logging"
	"github.com/evewatch/evewatch/internal/tailer"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	store, err := history.Open(filepath.Join(dir, "data"), 100)
	require.NoError(t, err)

	logger := logging.New(slog.LevelError, "text")
	eng := engine.New(tailer.New(filepath.Join(dir, "eve.json")), store, logger)
	h := handlers.New(eng, logger, 200, filepath.Join(dir, "eve.json"))
	return NewRouter(h, []string{"*"})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/alerts", http.StatusOK},
		{http.MethodGet, "/api/alerts/stats", http.StatusOK},
		{http.MethodDelete, "/api/alerts/clear", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRouter_Middleware(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
