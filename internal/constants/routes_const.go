// Package constants provides shared constant values used throughout the application.
//
// The routes_const.go file defines the request paths served by the gateway and
// the query string parameters its endpoints accept.
package constants

// Query Gateway Routes are the seven fixed analytics endpoints consumed by the dashboard.
const (
	// TotalIncidentsPath serves incident totals per year.
	TotalIncidentsPath = "/totalincidents"

	// ShootingTypePath serves incident totals per year and category.
	ShootingTypePath = "/shootingtype"

	// NeighborhoodsPath serves the number of distinct neighborhoods impacted per year.
	NeighborhoodsPath = "/neighborhoods"

	// ShootingsPath serves the incident table for a single year.
	ShootingsPath = "/shootings"

	// NeighborhoodBreakdownPath serves per-neighborhood category counters for a year.
	NeighborhoodBreakdownPath = "/neighborhood-breakdown"

	// ShootingsByMonthPath serves monthly totals, optionally narrowed to one category.
	ShootingsByMonthPath = "/shootingsbymonth"

	// ShootingsMapPath serves map points for a year, optionally narrowed to one category.
	ShootingsMapPath = "/shootingsmap"
)

// Operational Routes
const (
	HealthPath  = "/health"
	VersionPath = "/version"
	RoutesPath  = "/api/routes"
	MetricsPath = "/metrics"
)

// Query Parameters
const (
	// QueryParamYear selects the four-digit calendar year an endpoint reports on.
	QueryParamYear = "year"

	// QueryParamCrimeType narrows results to a single incident category.
	QueryParamCrimeType = "crime_type"
)
