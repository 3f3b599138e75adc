// Package api serves search sessions over HTTP, GraphQL and WebSocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/0xmhha/explorer-search/pkg/api/graphql"
	apimiddleware "github.com/0xmhha/explorer-search/pkg/api/middleware"
	"github.com/0xmhha/explorer-search/pkg/api/websocket"
	"github.com/0xmhha/explorer-search/pkg/network"
	"github.com/0xmhha/explorer-search/pkg/search"
)

// Dependencies are the services the API exposes
type Dependencies struct {
	Sessions *search.Store
	Engine   *search.Engine
	Networks *network.Registry
	// Gatherer serves /metrics; the default registry when nil
	Gatherer prometheus.Gatherer
	Version  string
}

// Server represents the API server
type Server struct {
	config      *Config
	logger      *zap.Logger
	deps        Dependencies
	router      *chi.Mux
	server      *http.Server
	wsServer    *websocket.Server
	rateLimiter *apimiddleware.RateLimiter
	started     time.Time
}

// NewServer creates a new API server
func NewServer(config *Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Sessions == nil || deps.Networks == nil {
		return nil, fmt.Errorf("sessions and networks are required")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := &Server{
		config:  config,
		logger:  logger.Named("api"),
		deps:    deps,
		router:  chi.NewRouter(),
		started: time.Now(),
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:           config.Address(),
		Handler:        s.router,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s, nil
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware() {
	// Recovery middleware (must be first)
	s.router.Use(apimiddleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(apimiddleware.LoggerWithLevel(s.logger))

	if s.config.EnableRateLimit {
		s.rateLimiter = apimiddleware.NewRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst, s.logger)
		s.router.Use(s.rateLimiter.Handler)
		s.logger.Info("rate limiting enabled",
			zap.Float64("rate_per_second", s.config.RateLimitPerSecond),
			zap.Int("burst", s.config.RateLimitBurst),
		)
	}

	if s.config.EnableCORS {
		s.router.Use(s.cors)
	}
}

// cors adds CORS headers to every response and answers preflights
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		for _, allowed := range s.config.AllowedOrigins {
			if allowed == "*" || allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Upgrade, Connection")
				w.Header().Set("Access-Control-Max-Age", "300")
				break
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() error {
	if s.config.EnableWebSocket {
		s.wsServer = websocket.NewServer(s.deps.Sessions, s.config.AllowedOrigins, s.logger)
		s.router.Get(s.config.SearchStreamPath, s.wsServer.ServeHTTP)
		s.logger.Info("search streams enabled", zap.String("path", s.config.SearchStreamPath))
	}

	s.router.Get(s.config.SearchPath, s.handleSearch)
	s.router.Delete(s.config.SearchPath+"/{session}", s.handleDeleteSession)
	s.router.Get("/networks", s.handleNetworks)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	if s.config.EnableGraphQL {
		handler, err := graphql.NewHandler(s.deps.Sessions, s.deps.Networks, s.logger, graphql.Options{
			WaitTimeout: s.config.WaitTimeout,
			SearchPath:  s.config.SearchPath,
		})
		if err != nil {
			return fmt.Errorf("failed to create GraphQL handler: %w", err)
		}
		s.router.Handle(s.config.GraphQLPath, handler)
		s.router.Get(s.config.GraphQLPlaygroundPath, handler.PlaygroundHandler(s.config.GraphQLPath))
		s.logger.Info("GraphQL API enabled",
			zap.String("path", s.config.GraphQLPath),
			zap.String("playground", s.config.GraphQLPlaygroundPath))
	}

	return nil
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		zap.String("address", s.config.Address()),
		zap.Bool("graphql", s.config.EnableGraphQL),
		zap.Bool("websocket", s.config.EnableWebSocket),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping API server")

	if s.wsServer != nil {
		s.wsServer.Stop()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped gracefully")
	return nil
}

// Router returns the underlying chi router (for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
