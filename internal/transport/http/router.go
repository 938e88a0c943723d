// Package httptransport assembles the coffer HTTP API: the shared middleware
// chain, the authenticated account routes, and the admin-only batch routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coffer/internal/platform/metrics"
	"coffer/internal/platform/middleware"
	"coffer/internal/replay"
)

// Registrar mounts a handler's routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar mounts a handler's admin routes.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// Config collects everything the router needs.
type Config struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
	ReplayGuard  replay.Guard
	Timeout      time.Duration

	Handlers      []Registrar
	AdminHandlers []AdminRegistrar
}

// NewRouter builds the full route tree. Every account route sits behind
// auth and the replay guard; admin routes additionally require the admin
// claim. Health and metrics stay outside the authenticated chain.
func NewRouter(cfg Config) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	root := chi.NewRouter()
	root.Get("/healthz", handleHealth)
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger(cfg.Logger))
	api.Use(middleware.Timeout(cfg.Timeout))
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.Latency(cfg.Metrics))
	api.Use(middleware.RequireAuth(cfg.JWTValidator, cfg.Logger))
	api.Use(middleware.ReplayGuard(cfg.ReplayGuard, cfg.Logger))

	for _, h := range cfg.Handlers {
		h.Register(api)
	}

	if len(cfg.AdminHandlers) > 0 {
		api.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.Logger))
			for _, h := range cfg.AdminHandlers {
				h.RegisterAdmin(r)
			}
		})
	}

	root.Mount("/", api)
	return root
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
