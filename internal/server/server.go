// Package server provides the HTTP server for the crime query gateway.
// It wires the incident store, the analytics service and the handlers
// together, configures routing and middleware, and manages the server
// lifecycle including graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/config"
	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/database"
	"github.com/crimestats/querygateway/internal/handlers"
	"github.com/crimestats/querygateway/internal/metrics"
	"github.com/crimestats/querygateway/internal/repository"
	"github.com/crimestats/querygateway/internal/service"
	"github.com/crimestats/querygateway/internal/utils/ratelimit"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// AnalyticsHandler serves the seven dashboard queries
	AnalyticsHandler *handlers.AnalyticsHandler

	// SystemHandler serves health, version and route listing
	SystemHandler *handlers.SystemHandler
}

// Server represents the API server for the query gateway.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides read access to the incident store
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// metrics is nil when metrics are disabled
	metrics *metrics.Metrics

	// rateLimiter is nil when rate limiting is disabled
	rateLimiter *ratelimit.Store

	// httpServer is the underlying HTTP server
	httpServer *http.Server
}

// NewServer creates a new server instance with all required components.
// It opens the incident store, then builds the repository, service and
// handlers on top of it and sets up the HTTP routes.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if the store cannot be opened, or cannot be reached while
//     database.require_on_start is set
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	return s.assemble(), nil
}

// New creates a server on top of an already opened pool.
func New(cfg *config.AppConfig, db *database.Pool) *Server {
	s := &Server{
		Config: cfg,
		Db:     db,
	}
	return s.assemble()
}

// assemble builds everything above the store and the HTTP server itself.
func (s *Server) assemble() *Server {
	s.setupMetrics()
	s.setupRateLimiter()
	s.setupHandlers()
	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.Config.Server.ServerAddress(),
		Handler:      s.GetRouter(),
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s
}

// setupDatabase opens the incident store and checks that it can be reached.
//
// An unreachable store is only fatal when database.require_on_start is set;
// otherwise the gateway starts anyway and every query reports the storage
// error until the store becomes available.
func (s *Server) setupDatabase() error {
	db, err := database.Open(&s.Config.Database, false)
	if err != nil {
		return err
	}

	if err := db.Verify(context.Background()); err != nil {
		if s.Config.Database.RequireOnStart {
			db.Close()
			return err
		}
		log.Warn().Err(err).Msg("Incident database is not reachable, starting anyway")
	}

	s.Db = db
	return nil
}

// setupMetrics creates the Prometheus collectors when metrics are enabled.
func (s *Server) setupMetrics() {
	if !s.Config.Metrics.Enabled {
		return
	}
	s.metrics = metrics.New(s.Config.Metrics.Namespace)
}

// setupRateLimiter creates the per-client limiter store when api.rate_limit
// is set.
func (s *Server) setupRateLimiter() {
	if s.Config.API.RateLimit <= 0 {
		return
	}

	rate := ratelimit.Rate{
		RequestsPerSecond: s.Config.API.RateLimit,
		Burst:             s.Config.API.RateBurst,
	}
	s.rateLimiter = ratelimit.NewStore(rate, constants.RateLimiterCleanupInterval, constants.RateLimiterIdleTTL)

	log.Info().
		Float64("requests_per_second", rate.RequestsPerSecond).
		Int("burst", rate.Burst).
		Msg("Rate limiting enabled")
}

// setupHandlers initializes the repository, the service and the handlers
// built on top of it.
func (s *Server) setupHandlers() {
	incidentRepo := repository.NewIncidentRepository(s.Db)

	var observer service.QueryObserver
	if s.metrics != nil {
		observer = s.metrics
	}
	analyticsService := service.NewAnalyticsService(incidentRepo, observer, s.Config.API.RedactStorageErrors)

	s.Handlers = &Handlers{
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsService),
		SystemHandler: handlers.NewSystemHandler(
			s.Db,
			s.Config.App.Version,
			s.Config.App.Environment,
			RouteCatalog(),
		),
	}
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal (SIGINT, SIGTERM) is received, in which case the server is shut
// down gracefully within server.shutdown_timeout.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			// Shutdown the server immediately if graceful shutdown fails
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown waits for in-flight requests within ctx and then closes the
// database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}
