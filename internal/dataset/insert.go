package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/models"
)

// Insert writes the incidents and their optional rows in one transaction.
// An incident without a location gets no Address row and one without
// coordinates gets no Geo row, so the gateway's left joins yield nulls.
func (b *Builder) Insert(ctx context.Context, incidents []models.Incident) error {
	startTime := time.Now()

	caseSQL := b.insertStatement((&models.Incident{}).TableName(),
		constants.ColumnObjectID, constants.ColumnDate, constants.ColumnCaseNumber,
		constants.ColumnDivisionName, constants.ColumnCouncilDistrict,
		constants.ColumnCrimeType, constants.ColumnCause)
	addressSQL := b.insertStatement((&models.LocationLabel{}).TableName(),
		constants.ColumnObjectID, constants.ColumnAddress,
		constants.ColumnNeighborhood, constants.ColumnZIPCode)
	geoSQL := b.insertStatement((&models.GeoPoint{}).TableName(),
		constants.ColumnObjectID, constants.ColumnLatitude, constants.ColumnLongitude)
	demoSQL := b.insertStatement((&models.Demographics{}).TableName(),
		constants.ColumnObjectID, constants.ColumnAgeGroup,
		constants.ColumnSex, constants.ColumnRace)

	var addresses, points int

	err := b.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, inc := range incidents {
			var district interface{}
			if inc.CouncilDistrict != nil {
				district = *inc.CouncilDistrict
			}

			if _, err := tx.ExecContext(ctx, caseSQL,
				inc.ObjectID, inc.Date, inc.CaseNumber, inc.DivisionName,
				district, inc.CrimeType, inc.Cause); err != nil {
				return fmt.Errorf("failed to insert incident %d: %w", inc.ObjectID, err)
			}

			if inc.Location != nil {
				if _, err := tx.ExecContext(ctx, addressSQL,
					inc.ObjectID, nullIfEmpty(inc.Location.Address),
					nullIfEmpty(inc.Location.Neighborhood), nullIfEmpty(inc.Location.ZIPCode)); err != nil {
					return fmt.Errorf("failed to insert address of incident %d: %w", inc.ObjectID, err)
				}
				addresses++
			}

			if inc.Geo != nil {
				if _, err := tx.ExecContext(ctx, geoSQL,
					inc.ObjectID, inc.Geo.Latitude, inc.Geo.Longitude); err != nil {
					return fmt.Errorf("failed to insert coordinates of incident %d: %w", inc.ObjectID, err)
				}
				points++
			}

			if _, err := tx.ExecContext(ctx, demoSQL,
				inc.ObjectID, inc.Victim.AgeGroup, inc.Victim.Sex, inc.Victim.Race); err != nil {
				return fmt.Errorf("failed to insert demographics of incident %d: %w", inc.ObjectID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("incidents", len(incidents)).
		Int("addresses", addresses).
		Int("geo_points", points).
		Dur("duration", time.Since(startTime)).
		Msg("Dataset rows inserted")

	return nil
}

// insertStatement renders an INSERT with the pool dialect's bind markers.
func (b *Builder) insertStatement(table string, columns ...string) string {
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = b.db.Dialect.Placeholder(i + 1)
	}
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") +
		") VALUES (" + strings.Join(marks, ", ") + ")"
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
