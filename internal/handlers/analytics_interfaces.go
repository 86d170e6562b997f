// Package handlers provides HTTP request handlers for the crime query gateway.
package handlers

import (
	"context"

	"github.com/crimestats/querygateway/internal/models"
)

// AnalyticsServiceInterface defines methods required from the analytics service.
// The analytics handlers use it to run the dashboard queries without being
// tightly coupled to the implementation.
type AnalyticsServiceInterface interface {
	// TotalIncidents returns the incident count of every year.
	TotalIncidents(ctx context.Context) ([]models.Row, error)

	// ShootingTypes returns the incident count of every (year, category) pair.
	ShootingTypes(ctx context.Context) ([]models.Row, error)

	// Neighborhoods returns the number of distinct neighborhoods hit each year.
	Neighborhoods(ctx context.Context) ([]models.Row, error)

	// Shootings returns the incident table of one year.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - params: The validated year parameter
	//
	// Returns:
	//   - The incidents of the year, newest first
	//   - An error if the storage query fails
	Shootings(ctx context.Context, params models.YearParams) ([]models.Row, error)

	// NeighborhoodBreakdown returns the per-neighborhood category counters of one year.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - params: The validated year parameter
	//
	// Returns:
	//   - One row per neighborhood with Injured, Fatal and AI counters
	//   - An error if the storage query fails
	NeighborhoodBreakdown(ctx context.Context, params models.YearParams) ([]models.Row, error)

	// ShootingsByMonth returns monthly totals per category.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - params: The optional category filter
	//
	// Returns:
	//   - One row per (year, month, category)
	//   - An error if the storage query fails
	ShootingsByMonth(ctx context.Context, params models.MonthlyParams) ([]models.Row, error)

	// ShootingsMap returns the map points of one year.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - params: The validated year and the optional category filter
	//
	// Returns:
	//   - The incidents of the year with their coordinates, newest first
	//   - An error if the storage query fails
	ShootingsMap(ctx context.Context, params models.MapParams) ([]models.Row, error)
}

// HealthChecker reports whether the incident store answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
