// Package server provides HTTP server management and lifecycle handling for the
// alternatives API. It includes server setup, middleware configuration, route
// management, and graceful shutdown capabilities with proper error handling and
// logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medisave/alternatives-api/config"
	"github.com/medisave/alternatives-api/handlers"
	"github.com/medisave/alternatives-api/interfaces"
	"github.com/medisave/alternatives-api/logging"
	"github.com/medisave/alternatives-api/metrics"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataStore     interfaces.DataStore
	recommender   interfaces.Recommender
	validator     interfaces.QueryValidator
	healthChecker interfaces.HealthChecker
	config        *config.Config
}

// NewServer creates a new server instance
func NewServer(
	cfg *config.Config,
	dataStore interfaces.DataStore,
	recommender interfaces.Recommender,
	validator interfaces.QueryValidator,
	healthChecker interfaces.HealthChecker,
) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataStore:     dataStore,
		recommender:   recommender,
		validator:     validator,
		healthChecker: healthChecker,
		config:        cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.RequestLogger(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/alternatives/{name}", handlers.FindAlternatives(s.recommender, s.validator, s.config.DefaultMaxResults))
	s.router.Get("/medicines/page/{pageNumber}", handlers.ServePagedMedicines(s.dataStore))
	s.router.Get("/medicines/{name}", handlers.FindMedicines(s.dataStore, s.validator))
	s.router.Get("/groups/{groupId}", handlers.FindGroup(s.dataStore))
	s.router.Get("/health", handlers.HealthCheck(s.healthChecker))
	s.router.Handle("/metrics", promhttp.Handler())
}

// Router returns the configured router, mainly for tests
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
