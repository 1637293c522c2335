package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delonghi-comfort/comfortd/internal/core"
)

// HealthHandler returns a simple OK for liveness checks.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// NewRouter builds the daemon's HTTP surface: liveness, metrics, the
// plugin registry, and each plugin mounted under /api/{id}.
func NewRouter(registry *core.Registry, plugins []core.Plugin, metrics *prometheus.Registry) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", MetricsHandler(metrics))

	r.Get("/api/plugins", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, registry.ListPlugins())
	})
	r.Get("/api/plugins/{id}", func(w http.ResponseWriter, req *http.Request) {
		descriptor, ok := registry.DescribePlugin(chi.URLParam(req, "id"))
		if !ok {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, descriptor)
	})

	for _, plugin := range plugins {
		plugin := plugin
		r.Route("/api/"+plugin.ID(), plugin.RegisterRoutes)
	}

	return r
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("server: write response: %v", err)
	}
}
