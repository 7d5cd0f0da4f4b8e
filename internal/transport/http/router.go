package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devicegate/internal/platform/middleware"
)

// RouterDeps carries everything the router needs. Handlers are constructed
// by the caller so wiring stays visible in one place.
type RouterDeps struct {
	Account *AccountHandler
	Admin   *AdminHandler
	Health  *HealthHandler

	AdminTokens    middleware.TokenValidator
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter assembles the middleware chain and mounts all endpoints.
// Diagnostics routes sit behind admin token auth; the liveness and metrics
// endpoints are unauthenticated so probes and scrapers can reach them.
func NewRouter(deps RouterDeps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(timeout))

	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Account.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(deps.AdminTokens, deps.Logger))
		deps.Admin.Register(r)
	})

	return r
}
