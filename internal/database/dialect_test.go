package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   Dialect
	}{
		{driver: "", want: SQLiteDialect{}},
		{driver: "sqlite", want: SQLiteDialect{}},
		{driver: "SQLite", want: SQLiteDialect{}},
		{driver: "postgres", want: PostgresDialect{}},
		{driver: "mysql", want: MySQLDialect{}},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DialectFor("mssql")
	assert.Error(t, err)
}

func TestDialectExpressions(t *testing.T) {
	tests := []struct {
		name        string
		dialect     Dialect
		placeholder string
		year        string
		month       string
		alias       string
	}{
		{
			name:        "sqlite",
			dialect:     SQLiteDialect{},
			placeholder: "?",
			year:        "substr(c.Date, 1, 4)",
			month:       "substr(c.Date, 6, 2)",
			alias:       "totalShootings",
		},
		{
			name:        "postgres",
			dialect:     PostgresDialect{},
			placeholder: "$2",
			year:        "substr(CAST(c.Date AS TEXT), 1, 4)",
			month:       "substr(CAST(c.Date AS TEXT), 6, 2)",
			alias:       `"totalShootings"`,
		},
		{
			name:        "mysql",
			dialect:     MySQLDialect{},
			placeholder: "?",
			year:        "SUBSTRING(CAST(c.Date AS CHAR), 1, 4)",
			month:       "SUBSTRING(CAST(c.Date AS CHAR), 6, 2)",
			alias:       "totalShootings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.placeholder, tt.dialect.Placeholder(2))
			assert.Equal(t, tt.year, tt.dialect.YearOf("c.Date"))
			assert.Equal(t, tt.month, tt.dialect.MonthOf("c.Date"))
			assert.Equal(t, tt.alias, tt.dialect.Alias("totalShootings"))
		})
	}
}
