package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/utils"
)

// SystemHandler serves the operational endpoints: health, version and the
// route catalog.
type SystemHandler struct {
	checker     HealthChecker
	version     string
	environment string
	routes      []models.RouteInfo
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(checker HealthChecker, version, environment string, routes []models.RouteInfo) *SystemHandler {
	return &SystemHandler{
		checker:     checker,
		version:     version,
		environment: environment,
		routes:      routes,
	}
}

// HealthCheck pings the incident store. It answers 503 when the store is
// unreachable, which is also the case when it failed to open at startup.
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.ServiceUnavailable(w, "")
		return
	}

	utils.JSON(w, http.StatusOK, models.HealthStatus{
		Status:  "healthy",
		Version: h.version,
	})
}

// Version reports the build version and the running environment.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, models.VersionInfo{
		Version:     h.version,
		Environment: h.environment,
	})
}

// Routes lists the public query endpoints with their parameters.
func (h *SystemHandler) Routes(w http.ResponseWriter, r *http.Request) {
	routes := h.routes
	if routes == nil {
		routes = []models.RouteInfo{}
	}
	utils.JSON(w, http.StatusOK, routes)
}
