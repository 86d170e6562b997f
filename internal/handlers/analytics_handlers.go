package handlers

import (
	"context"
	"net/http"

	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/utils"
)

// AnalyticsHandler serves the seven dashboard endpoints. Every response is
// a JSON array of rows keyed by column alias, or an {"error": ...} object.
type AnalyticsHandler struct {
	analyticsService AnalyticsServiceInterface
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// TotalIncidents handles GET /totalincidents
func (h *AnalyticsHandler) TotalIncidents(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.analyticsService.TotalIncidents)
}

// ShootingType handles GET /shootingtype
func (h *AnalyticsHandler) ShootingType(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.analyticsService.ShootingTypes)
}

// Neighborhoods handles GET /neighborhoods
func (h *AnalyticsHandler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.analyticsService.Neighborhoods)
}

// Shootings handles GET /shootings?year=YYYY
func (h *AnalyticsHandler) Shootings(w http.ResponseWriter, r *http.Request) {
	var params models.YearParams
	if err := utils.DecodeAndValidate(r, &params); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.respond(w, r, func(ctx context.Context) ([]models.Row, error) {
		return h.analyticsService.Shootings(ctx, params)
	})
}

// NeighborhoodBreakdown handles GET /neighborhood-breakdown?year=YYYY
func (h *AnalyticsHandler) NeighborhoodBreakdown(w http.ResponseWriter, r *http.Request) {
	var params models.YearParams
	if err := utils.DecodeAndValidate(r, &params); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.respond(w, r, func(ctx context.Context) ([]models.Row, error) {
		return h.analyticsService.NeighborhoodBreakdown(ctx, params)
	})
}

// ShootingsByMonth handles GET /shootingsbymonth[?crime_type=...]
func (h *AnalyticsHandler) ShootingsByMonth(w http.ResponseWriter, r *http.Request) {
	var params models.MonthlyParams
	if err := utils.DecodeAndValidate(r, &params); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.respond(w, r, func(ctx context.Context) ([]models.Row, error) {
		return h.analyticsService.ShootingsByMonth(ctx, params)
	})
}

// ShootingsMap handles GET /shootingsmap?year=YYYY[&crime_type=...]
func (h *AnalyticsHandler) ShootingsMap(w http.ResponseWriter, r *http.Request) {
	var params models.MapParams
	if err := utils.DecodeAndValidate(r, &params); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	h.respond(w, r, func(ctx context.Context) ([]models.Row, error) {
		return h.analyticsService.ShootingsMap(ctx, params)
	})
}

// respond runs the query with the request context and writes its rows.
func (h *AnalyticsHandler) respond(w http.ResponseWriter, r *http.Request, query func(ctx context.Context) ([]models.Row, error)) {
	rows, err := query(r.Context())
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Rows(w, rows)
}
