package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/database"
	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/query"
	"github.com/crimestats/querygateway/internal/utils"
)

// IncidentRepository defines the read-only aggregate queries over the
// incident dataset. Every method returns a non-nil slice on success.
type IncidentRepository interface {
	TotalsByYear(ctx context.Context) ([]models.Row, error)
	CategoryTotalsByYear(ctx context.Context) ([]models.Row, error)
	NeighborhoodsByYear(ctx context.Context) ([]models.Row, error)
	IncidentsForYear(ctx context.Context, year string) ([]models.Row, error)
	NeighborhoodBreakdown(ctx context.Context, year string) ([]models.Row, error)
	MonthlyTotals(ctx context.Context, params models.MonthlyParams) ([]models.Row, error)
	MapPoints(ctx context.Context, params models.MapParams) ([]models.Row, error)
}

// SQLIncidentRepository runs the queries through database/sql. The same SQL
// serves SQLite, PostgreSQL and MySQL; the pool's dialect fills in the
// year/month expressions, bind markers and alias quoting.
type SQLIncidentRepository struct {
	db *database.Pool
}

// NewIncidentRepository creates a new IncidentRepository
func NewIncidentRepository(db *database.Pool) IncidentRepository {
	return &SQLIncidentRepository{
		db: db,
	}
}

// TotalsByYear counts incidents per calendar year, oldest year first.
func (r *SQLIncidentRepository) TotalsByYear(ctx context.Context) ([]models.Row, error) {
	d := r.db.Dialect
	year := d.YearOf("c." + constants.ColumnDate)

	b := query.New(d, `
        SELECT `+year+` AS `+d.Alias(constants.AliasYear)+`,
               COUNT(*) AS `+d.Alias(constants.AliasTotalShootings)+`
        FROM `+constants.TableCaseInfo+` c`).
		GroupBy(year).
		OrderBy(year)

	return r.run(ctx, "yearly totals", b)
}

// CategoryTotalsByYear counts incidents per (year, category).
func (r *SQLIncidentRepository) CategoryTotalsByYear(ctx context.Context) ([]models.Row, error) {
	d := r.db.Dialect
	year := d.YearOf("c." + constants.ColumnDate)
	category := "c." + constants.ColumnCrimeType

	b := query.New(d, `
        SELECT `+year+` AS `+d.Alias(constants.AliasYear)+`,
               `+category+` AS `+d.Alias(constants.AliasCategory)+`,
               COUNT(*) AS `+d.Alias(constants.AliasTotalShootings)+`
        FROM `+constants.TableCaseInfo+` c`).
		GroupBy(year, category).
		OrderBy(year, category)

	return r.run(ctx, "category totals", b)
}

// NeighborhoodsByYear counts the distinct neighborhoods touched each year.
// Incidents without an Address row still count toward their year's group.
func (r *SQLIncidentRepository) NeighborhoodsByYear(ctx context.Context) ([]models.Row, error) {
	d := r.db.Dialect
	year := d.YearOf("c." + constants.ColumnDate)

	b := query.New(d, `
        SELECT `+year+` AS `+d.Alias(constants.AliasYear)+`,
               COUNT(DISTINCT a.`+constants.ColumnNeighborhood+`) AS `+d.Alias(constants.AliasNeighborhoodsImpacted)+`
        FROM `+constants.TableCaseInfo+` c
        LEFT JOIN `+constants.TableAddress+` a ON c.`+constants.ColumnObjectID+` = a.`+constants.ColumnObjectID).
		GroupBy(year).
		OrderBy(year)

	return r.run(ctx, "neighborhood counts", b)
}

// IncidentsForYear lists the incidents of one year, newest first. The
// neighborhood key carries the Address label, which is what the dashboard
// table has always displayed.
func (r *SQLIncidentRepository) IncidentsForYear(ctx context.Context, year string) ([]models.Row, error) {
	d := r.db.Dialect

	b := query.New(d, `
        SELECT c.`+constants.ColumnDate+` AS `+d.Alias(constants.AliasDate)+`,
               a.`+constants.ColumnAddress+` AS `+d.Alias(constants.AliasNeighborhood)+`,
               c.`+constants.ColumnCrimeType+` AS `+d.Alias(constants.AliasCrimeType)+`,
               c.`+constants.ColumnObjectID+` AS `+d.Alias(constants.AliasID)+`
        FROM `+constants.TableCaseInfo+` c
        LEFT JOIN `+constants.TableAddress+` a ON c.`+constants.ColumnObjectID+` = a.`+constants.ColumnObjectID).
		Where(d.YearOf("c."+constants.ColumnDate)+" = ?", year).
		OrderBy("c." + constants.ColumnDate + " DESC")

	return r.run(ctx, "incidents for year", b)
}

// NeighborhoodBreakdown counts injuries, fatalities and acoustic alerts per
// neighborhood for one year. The three sums are independent; incidents of
// any other category add zero but still produce their neighborhood's row.
func (r *SQLIncidentRepository) NeighborhoodBreakdown(ctx context.Context, year string) ([]models.Row, error) {
	d := r.db.Dialect
	yearExpr := d.YearOf("c." + constants.ColumnDate)
	neighborhood := "a." + constants.ColumnNeighborhood

	b := query.New(d, `
        SELECT `+yearExpr+` AS `+d.Alias(constants.AliasYear)+`,
               `+neighborhood+` AS `+d.Alias(constants.AliasNeighborhood)+`,
               `+countCategory(constants.CategoryNonFatalShooting)+` AS `+d.Alias(constants.AliasInjured)+`,
               `+countCategory(constants.CategoryHomicide)+` AS `+d.Alias(constants.AliasFatal)+`,
               `+countCategory(constants.CategoryShotspotterAlert)+` AS `+d.Alias(constants.AliasAI)+`
        FROM `+constants.TableCaseInfo+` c
        LEFT JOIN `+constants.TableAddress+` a ON c.`+constants.ColumnObjectID+` = a.`+constants.ColumnObjectID).
		Where(yearExpr+" = ?", year).
		GroupBy(yearExpr, neighborhood).
		OrderBy(neighborhood)

	return r.run(ctx, "neighborhood breakdown", b)
}

// MonthlyTotals counts incidents per (year, month, category), optionally for
// one category only.
func (r *SQLIncidentRepository) MonthlyTotals(ctx context.Context, params models.MonthlyParams) ([]models.Row, error) {
	d := r.db.Dialect
	year := d.YearOf("c." + constants.ColumnDate)
	month := d.MonthOf("c." + constants.ColumnDate)
	category := "c." + constants.ColumnCrimeType

	b := query.New(d, `
        SELECT `+year+` AS `+d.Alias(constants.AliasYear)+`,
               `+month+` AS `+d.Alias(constants.AliasMonth)+`,
               `+category+` AS `+d.Alias(constants.AliasCategory)+`,
               COUNT(*) AS `+d.Alias(constants.AliasTotalShootings)+`
        FROM `+constants.TableCaseInfo+` c`).
		WhereIf(params.HasCrimeType(), category+" = ?", params.CrimeType).
		GroupBy(year, month, category).
		OrderBy(year, month, category)

	return r.run(ctx, "monthly totals", b)
}

// MapPoints lists the incidents of one year with their coordinates, newest
// first, optionally for one category only. Incidents without a Geo row come
// back with null lat/lon.
func (r *SQLIncidentRepository) MapPoints(ctx context.Context, params models.MapParams) ([]models.Row, error) {
	d := r.db.Dialect

	b := query.New(d, `
        SELECT c.`+constants.ColumnDate+` AS `+d.Alias(constants.AliasDate)+`,
               a.`+constants.ColumnAddress+` AS `+d.Alias(constants.AliasNeighborhood)+`,
               c.`+constants.ColumnCrimeType+` AS `+d.Alias(constants.AliasCrimeType)+`,
               g.`+constants.ColumnLatitude+` AS `+d.Alias(constants.AliasLatitude)+`,
               g.`+constants.ColumnLongitude+` AS `+d.Alias(constants.AliasLongitude)+`,
               c.`+constants.ColumnObjectID+` AS `+d.Alias(constants.AliasID)+`
        FROM `+constants.TableCaseInfo+` c
        LEFT JOIN `+constants.TableAddress+` a ON c.`+constants.ColumnObjectID+` = a.`+constants.ColumnObjectID+`
        LEFT JOIN `+constants.TableGeo+` g ON c.`+constants.ColumnObjectID+` = g.`+constants.ColumnObjectID).
		Where(d.YearOf("c."+constants.ColumnDate)+" = ?", params.Year).
		WhereIf(params.HasCrimeType(), "c."+constants.ColumnCrimeType+" = ?", params.CrimeType).
		OrderBy("c." + constants.ColumnDate + " DESC")

	return r.run(ctx, "map points", b)
}

// countCategory renders a conditional count of one category label. Labels
// are fixed constants, never user input.
func countCategory(label string) string {
	return "SUM(CASE WHEN c." + constants.ColumnCrimeType + " = '" +
		strings.ReplaceAll(label, "'", "''") + "' THEN 1 ELSE 0 END)"
}

// run builds the statement, executes it under the pool's query timeout and
// collects every row into a map keyed by column alias.
func (r *SQLIncidentRepository) run(ctx context.Context, name string, b *query.Builder) ([]models.Row, error) {
	sqlText, args, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", name, err)
	}

	ctx, cancel := r.db.WithQueryTimeout(ctx)
	defer cancel()

	// Start query timer
	startTime := time.Now()

	result, err := r.scanRows(ctx, sqlText, args)

	// Log the query execution
	utils.LogDBQuery(sqlText, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}

	return result, nil
}

// scanRows executes a query and returns all rows as maps
func (r *SQLIncidentRepository) scanRows(ctx context.Context, sqlText string, args []interface{}) ([]models.Row, error) {
	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	// Type names are optional; drivers that do not report them yield ""
	typeNames := make([]string, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			if i < len(typeNames) {
				typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
			}
		}
	}

	result := make([]models.Row, 0)

	for rows.Next() {
		// Create a slice of interface{} to hold the row values
		rowValues := make([]interface{}, len(columns))
		rowPointers := make([]interface{}, len(columns))
		for i := range rowValues {
			rowPointers[i] = &rowValues[i]
		}

		if err := rows.Scan(rowPointers...); err != nil {
			return nil, err
		}

		rowMap := make(models.Row, len(columns))
		for i, colName := range columns {
			rowMap[colName] = normalizeValue(typeNames[i], rowValues[i])
		}

		result = append(result, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// normalizeValue turns driver byte slices into JSON-friendly values. Text
// becomes a string; DECIMAL/NUMERIC aggregates (MySQL SUM, PostgreSQL
// NUMERIC) become numbers.
func normalizeValue(typeName string, v interface{}) interface{} {
	raw, ok := v.([]byte)
	if !ok {
		return v
	}

	s := string(raw)
	switch typeName {
	case "DECIMAL", "NUMERIC":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
