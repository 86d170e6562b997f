// Package dataset builds the incident database the gateway serves.
//
// The gateway itself never writes. This package is used by the loader binary
// and by integration tests to create the four dataset tables and fill them
// from a CSV export of the gun-violence feed.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/database"
	"github.com/crimestats/querygateway/internal/models"
)

// Table describes one relation of the dataset.
type Table struct {
	// Name is the physical table name
	Name string
	// Description is a human-readable explanation of what the table holds
	Description string
	// CreateSQL creates the table if it does not exist yet
	CreateSQL string
}

// tableNamer is implemented by every record model stored in a table of its own.
type tableNamer interface {
	TableName() string
}

func newTable(model tableNamer, description, columns string) Table {
	name := model.TableName()
	return Table{
		Name:        name,
		Description: description,
		CreateSQL:   "CREATE TABLE IF NOT EXISTS " + name + " (" + columns + "\n)",
	}
}

// Tables returns the dataset relations in creation order. Names come from
// the record models so the loader and the models cannot drift apart.
func Tables() []Table {
	return []Table{
		newTable(&models.Incident{}, "One row per incident", `
			ObjectId INTEGER PRIMARY KEY,
			Date TEXT NOT NULL,
			Case_Number TEXT,
			Division_Name TEXT,
			Council_District INTEGER,
			Crime_Type TEXT,
			Cause TEXT`),
		newTable(&models.LocationLabel{}, "Address and neighborhood label of an incident", `
			ObjectId INTEGER PRIMARY KEY,
			Address TEXT,
			Neighborhood TEXT,
			ZIP_Code TEXT`),
		newTable(&models.GeoPoint{}, "Coordinates of an incident", `
			ObjectId INTEGER PRIMARY KEY,
			Latitude REAL,
			Longitude REAL`),
		newTable(&models.Demographics{}, "Victim demographics of an incident", `
			ObjectId INTEGER PRIMARY KEY,
			Age_Group TEXT,
			Sex TEXT,
			Race TEXT`),
	}
}

// Builder creates and fills the dataset tables.
type Builder struct {
	db *database.Pool
}

// NewBuilder creates a new dataset builder on a writable pool.
func NewBuilder(db *database.Pool) *Builder {
	return &Builder{
		db: db,
	}
}

// CreateSchema creates the dataset tables inside one transaction. With
// replace set, existing tables are dropped first so the next load starts
// from an empty dataset.
func (b *Builder) CreateSchema(ctx context.Context, replace bool) error {
	log.Info().Bool("replace", replace).Msg("Creating dataset schema")
	startTime := time.Now()

	tables := Tables()

	err := b.db.Transaction(ctx, func(tx *sql.Tx) error {
		if replace {
			// Drop in reverse order of creation
			for i := len(tables) - 1; i >= 0; i-- {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+tables[i].Name); err != nil {
					return fmt.Errorf("failed to drop table %s: %w", tables[i].Name, err)
				}
			}
		}

		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, table.CreateSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", table.Name, err)
			}
			log.Debug().Str("table", table.Name).Msg(table.Description)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("tables", len(tables)).
		Dur("duration", time.Since(startTime)).
		Msg("Dataset schema ready")

	return nil
}
