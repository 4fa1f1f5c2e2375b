package http

import (
	"net/http"
	"time"

	"tourism-system/internal/metrics"
	"tourism-system/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	serviceName    = "tourism-system"
	serviceVersion = "1.0.0"
)

type Router struct {
	chi.Router
}

func NewRouter() *Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimit)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	return &Router{r}
}

// RegisterTourismRoutes registers the query and history endpoints.
func (r *Router) RegisterTourismRoutes(h *TourismHandler) {
	h.RegisterRoutes(r)
}

// RegisterHealthRoutes registers liveness/readiness endpoints and the root
// endpoint map.
func (r *Router) RegisterHealthRoutes() {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"service": serviceName,
			"version": serviceVersion,
			"endpoints": map[string]string{
				"/api/v1/tourism/query":                "POST - Query tourism information",
				"/api/v1/tourism/history":              "GET - Recent query history",
				"/api/v1/tourism/history/stats":        "GET - Query statistics",
				"/api/v1/tourism/history/place/{name}": "GET - History for a place",
				"/health":                              "GET - Health check",
				"/metrics":                             "GET - Prometheus metrics",
			},
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"service":   serviceName,
			"version":   serviceVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ready",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

// RegisterMetricsRoutes exposes the Prometheus scrape endpoint.
func (r *Router) RegisterMetricsRoutes() {
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}
