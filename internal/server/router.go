package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evewatch/evewatch/internal/handlers"
	"github.com/evewatch/evewatch/internal/middleware"
)

// NewRouter constructs a ServeMux with the alert API routes registered.
func NewRouter(h *handlers.Handler, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Alert history API
	mux.HandleFunc("/api/alerts", h.Alerts)
	mux.HandleFunc("/api/alerts/stats", h.AlertStats)
	mux.HandleFunc("/api/alerts/clear", h.ClearAlerts)

	// Health endpoints
	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})

	return middleware.RequestID(cors(mux))
}
