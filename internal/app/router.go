package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/campuskit/internal/authn"
	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/idp"
	"github.com/campuskit/campuskit/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Identity         authn.Middleware
	DirectoryHandler *directory.Handler
	WebhookHandler   *idp.WebhookHandler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Campuskit defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Identity: params.Identity,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/users", params.DirectoryHandler.MountRoutes)
	if params.WebhookHandler != nil {
		r.Route("/api/webhooks", params.WebhookHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
