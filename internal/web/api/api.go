// Package api exposes schema generation over the wp-schema/v1 REST routes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/service"
	"github.com/wpschema/wpschema/internal/web/auth"
	"github.com/wpschema/wpschema/internal/web/middleware"
	"github.com/wpschema/wpschema/internal/web/profiling"
	"github.com/wpschema/wpschema/internal/web/ratelimit"
	"github.com/wpschema/wpschema/internal/web/response"
)

// Namespace prefixes every REST route
const Namespace = "/wp-schema/v1"

// maxBodyBytes caps the generate request body
const maxBodyBytes = 1 << 20

// Config wires the router to its collaborators
type Config struct {
	Service      *service.Service
	Logger       *zap.Logger
	Metrics      *observability.Collector
	Tokens       *auth.TokenService
	AppPasswords *auth.AppPasswords
	// CORSOrigins enables CORS for the listed origins when non-empty
	CORSOrigins []string
	// Timeout bounds each request; zero disables it
	Timeout time.Duration
	// RateLimiter throttles the REST routes when set
	RateLimiter ratelimit.Limiter
	// Profiling mounts pprof under /debug/pprof for administrators
	Profiling bool
}

// Handler serves the REST routes
type Handler struct {
	svc      *service.Service
	logger   *zap.Logger
	validate *validator.Validate
}

// NewRouter builds the chi router with the middleware stack
func NewRouter(config Config) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:      config.Service,
		logger:   logger,
		validate: newValidator(),
	}

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:    logger,
			Metrics:   config.Metrics,
			SkipPaths: []string{"/healthz", "/metrics"},
		}),
		middleware.Recovery(logger),
	)
	if len(config.CORSOrigins) > 0 {
		chain.Use(middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins)))
	}
	chain.Use(middleware.Timeout(config.Timeout))
	chain.Use(middleware.Authenticate(middleware.AuthConfig{
		Tokens:       config.Tokens,
		AppPasswords: config.AppPasswords,
		Logger:       logger,
	}))

	r := chi.NewRouter()
	r.Use(chain.Middlewares()...)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.RenderErrorWithCode(w, http.StatusNotFound, errNoRoute, "rest_no_route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.RenderErrorWithCode(w, http.StatusMethodNotAllowed, errNoRoute, "rest_no_route")
	})

	r.Get("/healthz", h.health)
	if config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", config.Metrics.Handler())
	}

	if config.Profiling {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapManageOptions))
			profiling.RegisterRoutes(r, profiling.DefaultConfig())
		})
	}

	r.Route(Namespace, func(r chi.Router) {
		if config.RateLimiter != nil {
			r.Use(middleware.RateLimit(config.RateLimiter, logger))
		}
		r.With(middleware.RequireCapability(auth.CapEditPosts)).Post("/generate", h.generate)
		r.Get("/post/{id}", h.post)
		r.Get("/head", h.head)
		r.Get("/hooks", h.hooks)
		r.With(middleware.RequireCapability(auth.CapManageOptions)).Delete("/cache", h.flushCache)
	})

	return r
}
