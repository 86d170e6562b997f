package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/middleware"
	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/utils"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
// - The seven analytics endpoints consumed by the dashboard, rate limited
//   per client when api.rate_limit is set
// - Health check, version and route listing endpoints
// - The Prometheus endpoint when metrics are enabled
//
// Unknown paths keep chi's default 404.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	// Base middleware
	if s.Config.Server.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(s.requestObserver()))
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(corsMiddleware(s.Config.CORS.AllowedOrigins))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.MethodNotAllowed(w)
	})

	// Analytics routes
	analytics := s.Handlers.AnalyticsHandler
	r.Group(func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(middleware.RateLimit(s.rateLimiter))
		}
		r.Use(chimiddleware.NoCache)

		r.Get(constants.TotalIncidentsPath, analytics.TotalIncidents)
		r.Get(constants.ShootingTypePath, analytics.ShootingType)
		r.Get(constants.NeighborhoodsPath, analytics.Neighborhoods)
		r.Get(constants.ShootingsPath, analytics.Shootings)
		r.Get(constants.NeighborhoodBreakdownPath, analytics.NeighborhoodBreakdown)
		r.Get(constants.ShootingsByMonthPath, analytics.ShootingsByMonth)
		r.Get(constants.ShootingsMapPath, analytics.ShootingsMap)
	})

	// Health check, version and route listing
	system := s.Handlers.SystemHandler
	r.Group(func(r chi.Router) {
		r.Get(constants.HealthPath, system.HealthCheck)
		r.Get(constants.VersionPath, system.Version)
		r.Get(constants.RoutesPath, system.Routes)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, constants.MetricsPath, s.metrics.Handler())
	}

	s.router = r
}

// GetRouter returns the router used by the server.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// requestObserver returns nil rather than a typed nil pointer when metrics
// are disabled.
func (s *Server) requestObserver() middleware.RequestObserver {
	if s.metrics == nil {
		return nil
	}
	return s.metrics
}

// corsMiddleware allows the dashboard to call the gateway from the
// configured origins. The gateway is read-only, so only GET and the
// preflight OPTIONS are allowed.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	log.Info().Strs("allowed_origins", allowedOrigins).Msg("Using CORS allowed origins")

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", constants.HeaderContentType, constants.HeaderXRequestID},
		ExposedHeaders: []string{constants.HeaderXRequestID},
		MaxAge:         constants.CORSMaxAge,
	})
}

// RouteCatalog describes the analytics endpoints for GET /api/routes.
func RouteCatalog() []models.RouteInfo {
	year := []string{constants.QueryParamYear}
	crimeType := []string{constants.QueryParamCrimeType}

	return []models.RouteInfo{
		{
			Method:      http.MethodGet,
			Path:        constants.TotalIncidentsPath,
			Description: "Incident totals per year",
			Required:    []string{},
			Optional:    []string{},
		},
		{
			Method:      http.MethodGet,
			Path:        constants.ShootingTypePath,
			Description: "Incident totals per year and category",
			Required:    []string{},
			Optional:    []string{},
		},
		{
			Method:      http.MethodGet,
			Path:        constants.NeighborhoodsPath,
			Description: "Number of distinct neighborhoods with incidents per year",
			Required:    []string{},
			Optional:    []string{},
		},
		{
			Method:      http.MethodGet,
			Path:        constants.ShootingsPath,
			Description: "Incidents of one year, newest first",
			Required:    year,
			Optional:    []string{},
		},
		{
			Method:      http.MethodGet,
			Path:        constants.NeighborhoodBreakdownPath,
			Description: "Per-neighborhood category counters for one year",
			Required:    year,
			Optional:    []string{},
		},
		{
			Method:      http.MethodGet,
			Path:        constants.ShootingsByMonthPath,
			Description: "Incident totals per year, month and category",
			Required:    []string{},
			Optional:    crimeType,
		},
		{
			Method:      http.MethodGet,
			Path:        constants.ShootingsMapPath,
			Description: "Incident coordinates for one year",
			Required:    year,
			Optional:    crimeType,
		},
	}
}
