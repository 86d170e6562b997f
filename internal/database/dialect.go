package database

import (
	"fmt"
	"strings"

	"github.com/crimestats/querygateway/internal/constants"
)

// Dialect captures the handful of SQL differences between the engines the
// dataset can be served from. Dates are stored as 'YYYY-MM-DD' text on every
// engine, so year and month are extracted by position.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// YearOf returns an expression yielding the 4-character year of a date column.
	YearOf(column string) string
	// MonthOf returns an expression yielding the 2-character month of a date column.
	MonthOf(column string) string
	// Alias renders an output column name so its case survives the engine.
	Alias(name string) string
}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case constants.DriverSQLite, "":
		return SQLiteDialect{}, nil
	case constants.DriverPostgres:
		return PostgresDialect{}, nil
	case constants.DriverMySQL:
		return MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// SQLiteDialect targets the embedded database file.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string           { return constants.DriverSQLite }
func (SQLiteDialect) Placeholder(int) string { return "?" }
func (SQLiteDialect) Alias(name string) string {
	return name
}

func (SQLiteDialect) YearOf(column string) string {
	return fmt.Sprintf("substr(%s, 1, 4)", column)
}

func (SQLiteDialect) MonthOf(column string) string {
	return fmt.Sprintf("substr(%s, 6, 2)", column)
}

// PostgresDialect targets a PostgreSQL mirror. Unquoted identifiers fold to
// lower case there, so output aliases are quoted.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return constants.DriverPostgres }

func (PostgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (PostgresDialect) Alias(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (PostgresDialect) YearOf(column string) string {
	return fmt.Sprintf("substr(CAST(%s AS TEXT), 1, 4)", column)
}

func (PostgresDialect) MonthOf(column string) string {
	return fmt.Sprintf("substr(CAST(%s AS TEXT), 6, 2)", column)
}

// MySQLDialect targets a MySQL or MariaDB mirror.
type MySQLDialect struct{}

func (MySQLDialect) Name() string           { return constants.DriverMySQL }
func (MySQLDialect) Placeholder(int) string { return "?" }
func (MySQLDialect) Alias(name string) string {
	return name
}

func (MySQLDialect) YearOf(column string) string {
	return fmt.Sprintf("SUBSTRING(CAST(%s AS CHAR), 1, 4)", column)
}

func (MySQLDialect) MonthOf(column string) string {
	return fmt.Sprintf("SUBSTRING(CAST(%s AS CHAR), 6, 2)", column)
}
