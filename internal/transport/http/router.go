package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse/internal/auth/identity"
	"gatehouse/internal/auth/session"
	"gatehouse/internal/platform/metrics"
	"gatehouse/internal/platform/middleware"
	dErrors "gatehouse/pkg/domain-errors"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Auth     *AuthHandler
	GraphQL  *GraphQLHandler
	Codec    *session.Codec
	Resolver *identity.Resolver
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Health reports dependency liveness; nil checks are skipped.
	Health func() error
}

// NewRouter assembles the full route tree with the platform middleware
// chain. Session resolution runs for every route, so any endpoint can ask
// for the current user.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	r.Use(ResolveSession(deps.Codec, deps.Resolver, deps.Logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
	})

	deps.Auth.Register(r)
	if deps.GraphQL != nil {
		deps.GraphQL.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
