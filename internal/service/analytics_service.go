// Package service provides business logic implementations for the crime query gateway.
// It sits between the HTTP handlers and the incident repository.
//
// This file implements the analytics service, which answers the seven fixed
// dashboard questions. It times every query, reports it to an optional
// observer, and turns storage failures into client-facing errors.
package service

import (
	"context"
	"time"

	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/repository"
	"github.com/crimestats/querygateway/internal/utils"
)

// Query names reported to the observer and written to error logs.
const (
	QueryTotalIncidents        = "total_incidents"
	QueryShootingTypes         = "shooting_types"
	QueryNeighborhoods         = "neighborhoods"
	QueryShootings             = "shootings"
	QueryNeighborhoodBreakdown = "neighborhood_breakdown"
	QueryShootingsByMonth      = "shootings_by_month"
	QueryShootingsMap          = "shootings_map"
)

// QueryObserver receives the outcome of every storage query.
type QueryObserver interface {
	ObserveQuery(name string, duration time.Duration, err error)
}

// AnalyticsService answers the dashboard's aggregate questions.
type AnalyticsService struct {
	repo     repository.IncidentRepository
	observer QueryObserver

	// redactStorageErrors replaces driver messages with a generic one
	redactStorageErrors bool
}

// NewAnalyticsService creates a new AnalyticsService.
//
// Parameters:
//   - repo: Repository executing the aggregate queries
//   - observer: Optional sink for query timings, may be nil
//   - redactStorageErrors: Hide storage engine messages from clients
//
// Returns:
//   - A new AnalyticsService instance
func NewAnalyticsService(repo repository.IncidentRepository, observer QueryObserver, redactStorageErrors bool) *AnalyticsService {
	return &AnalyticsService{
		repo:                repo,
		observer:            observer,
		redactStorageErrors: redactStorageErrors,
	}
}

// TotalIncidents returns the incident count of every year.
func (s *AnalyticsService) TotalIncidents(ctx context.Context) ([]models.Row, error) {
	return s.run(QueryTotalIncidents, func() ([]models.Row, error) {
		return s.repo.TotalsByYear(ctx)
	})
}

// ShootingTypes returns the incident count of every (year, category) pair.
func (s *AnalyticsService) ShootingTypes(ctx context.Context) ([]models.Row, error) {
	return s.run(QueryShootingTypes, func() ([]models.Row, error) {
		return s.repo.CategoryTotalsByYear(ctx)
	})
}

// Neighborhoods returns the number of distinct neighborhoods hit each year.
func (s *AnalyticsService) Neighborhoods(ctx context.Context) ([]models.Row, error) {
	return s.run(QueryNeighborhoods, func() ([]models.Row, error) {
		return s.repo.NeighborhoodsByYear(ctx)
	})
}

// Shootings returns the incident table of one year.
func (s *AnalyticsService) Shootings(ctx context.Context, params models.YearParams) ([]models.Row, error) {
	return s.run(QueryShootings, func() ([]models.Row, error) {
		return s.repo.IncidentsForYear(ctx, params.Year)
	})
}

// NeighborhoodBreakdown returns the per-neighborhood category counters of one year.
func (s *AnalyticsService) NeighborhoodBreakdown(ctx context.Context, params models.YearParams) ([]models.Row, error) {
	return s.run(QueryNeighborhoodBreakdown, func() ([]models.Row, error) {
		return s.repo.NeighborhoodBreakdown(ctx, params.Year)
	})
}

// ShootingsByMonth returns monthly totals, narrowed to one category when the
// filter is set.
func (s *AnalyticsService) ShootingsByMonth(ctx context.Context, params models.MonthlyParams) ([]models.Row, error) {
	return s.run(QueryShootingsByMonth, func() ([]models.Row, error) {
		return s.repo.MonthlyTotals(ctx, params)
	})
}

// ShootingsMap returns the map points of one year, narrowed to one category
// when the filter is set.
func (s *AnalyticsService) ShootingsMap(ctx context.Context, params models.MapParams) ([]models.Row, error) {
	return s.run(QueryShootingsMap, func() ([]models.Row, error) {
		return s.repo.MapPoints(ctx, params)
	})
}

// run times one repository call and maps its failure to a storage error.
// The full driver error is always logged.
func (s *AnalyticsService) run(name string, query func() ([]models.Row, error)) ([]models.Row, error) {
	startTime := time.Now()

	rows, err := query()

	if s.observer != nil {
		s.observer.ObserveQuery(name, time.Since(startTime), err)
	}

	if err != nil {
		utils.LogError(err, map[string]interface{}{
			"query": name,
		})
		return nil, utils.NewStorageError(err, s.redactStorageErrors)
	}

	if rows == nil {
		rows = []models.Row{}
	}

	return rows, nil
}
