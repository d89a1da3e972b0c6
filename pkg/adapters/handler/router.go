package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/tinylink/pkg/config"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LinkService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHTTPHandler(service, cfg.ShortURL, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{
			"message": "ok",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&res)
	})
	mux.HandleFunc("GET /s/{short_code}", h.Redirect)

	// API & Dashboard
	mux.HandleFunc("POST /api/v1/links", h.Create)
	mux.HandleFunc("GET /api/v1/links", h.List)
	mux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	mux.HandleFunc("GET /api/v1/links/{short_code}/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/dashboard", h.Dashboard)

	var handler http.Handler = mux
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
		handler = Metrics(handler)
	}
	return RequestLogger(logger)(handler)
}
