// Package api provides the HTTP API server and handlers for the feed proxy.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reelfeed/reelfeed-server/internal/envelope"
	"github.com/reelfeed/reelfeed-server/internal/http/response"
	"github.com/reelfeed/reelfeed-server/internal/provider"
	"github.com/reelfeed/reelfeed-server/internal/ratelimit"
)

// Options tunes the server beyond its required dependencies.
type Options struct {
	// Title and Version describe the OpenAPI document.
	Title   string
	Version string
	// CORSOrigins lists allowed origins. Empty means "*".
	CORSOrigins []string
	// Limiter throttles callers by client IP. Nil disables throttling.
	Limiter *ratelimit.KeyedRateLimiter
	// UpstreamURL is reported by the health check.
	UpstreamURL string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	registry *provider.Registry
	codec    *envelope.Codec
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(registry *provider.Registry, codec *envelope.Codec, opts Options, logger *slog.Logger) *Server {
	if opts.Title == "" {
		opts.Title = "ReelFeed API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		registry: registry,
		codec:    codec,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig(opts.Title, opts.Version)
	config.Transformers = append(config.Transformers, NewEnvelopeTransformer(codec))
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mostly for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Compress(5))
	if s.opts.Limiter != nil {
		s.router.Use(RateLimitMiddleware(s.opts.Limiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found: "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerProviderRoutes()
	s.registerFeedRoutes()
}
