package main

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zlin-dev/userhub/internal/api"
	"github.com/zlin-dev/userhub/internal/api/middleware"
	"github.com/zlin-dev/userhub/internal/config"
	"github.com/zlin-dev/userhub/internal/ratelimit"
	"github.com/zlin-dev/userhub/internal/routes"
	"github.com/zlin-dev/userhub/internal/service/auth"
	"github.com/zlin-dev/userhub/internal/service/user"
)

// buildRouter assembles the middleware pipeline and mounts the route
// modules. Stage order is fixed: the error boundary wraps everything so
// later failures always render as envelopes, and authentication runs
// per-route after the shared stages.
func buildRouter(
	cfg *config.Config,
	log *slog.Logger,
	userService *user.Service,
	tokens auth.TokenService,
	limitStore ratelimit.Store,
) chi.Router {
	boundary := middleware.NewErrorBoundary(cfg.IsDevelopment())

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(boundary.Recover)
	r.Use(middleware.ResponseTimer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		Store:  limitStore,
		Max:    cfg.RateLimit.Max,
		Window: time.Duration(cfg.RateLimit.WindowMS) * time.Millisecond,
	}))
	r.Use(middleware.ContentValidator(cfg.Server.MaxBodyBytes))

	reg := routes.NewRegistry(log, boundary, middleware.Authenticator(tokens))

	docs := routes.NewDocsHandler("userhub", version)
	reg.Register(routes.UserModule(api.NewUserHandler(userService)))
	reg.Register(routes.HealthModule(api.NewHealthHandler(version)))
	reg.Register(routes.DocsModule(docs))

	docs.SetRoutes(reg.Mount(r))

	return r
}
