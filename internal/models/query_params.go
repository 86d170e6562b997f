// Package models provides the data structures of the crime query gateway.
// This file contains the typed query-string parameters of each endpoint.
// Fields are filled from the URL by utils.DecodeQuery through their `query`
// tag and checked once by utils.ValidateStruct through their `validate` tag.
package models

// Row is a single result row keyed by column alias. Rows are serialized
// verbatim, so the aliases are the JSON keys clients read.
type Row = map[string]interface{}

// YearParams selects a single calendar year.
// Used by the incident table and the neighborhood breakdown.
type YearParams struct {
	// Year is matched against the 4-character year component of the incident date
	Year string `query:"year" validate:"required,calendar_year"`
}

// MonthlyParams optionally narrows the monthly breakdown to one category.
type MonthlyParams struct {
	// CrimeType is matched exactly against the incident category when present
	CrimeType string `query:"crime_type" validate:"omitempty,max=100"`
}

// HasCrimeType reports whether the category filter was supplied.
func (p MonthlyParams) HasCrimeType() bool {
	return p.CrimeType != ""
}

// MapParams selects the map points of a year, optionally of one category.
type MapParams struct {
	Year      string `query:"year" validate:"required,calendar_year"`
	CrimeType string `query:"crime_type" validate:"omitempty,max=100"`
}

// HasCrimeType reports whether the category filter was supplied.
func (p MapParams) HasCrimeType() bool {
	return p.CrimeType != ""
}
