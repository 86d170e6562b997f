// Package models provides the data structures of the crime query gateway.
// This file contains the records the dataset loader writes. The gateway
// itself only ever reads these tables through aggregate queries.
package models

import "github.com/crimestats/querygateway/internal/constants"

// Incident is one reported gun-violence incident together with the optional
// rows that hang off it in the Address, Geo and Demographics tables.
type Incident struct {
	// ObjectID is the stable identifier shared by all four tables
	ObjectID int64 `json:"id" db:"ObjectId"`

	// Date is the normalized 'YYYY-MM-DD' incident date
	Date string `json:"date" db:"Date"`

	CaseNumber   string `json:"case_number" db:"Case_Number"`
	DivisionName string `json:"division_name" db:"Division_Name"`

	// CouncilDistrict is nil when the feed left it blank
	CouncilDistrict *int64 `json:"council_district" db:"Council_District"`

	// CrimeType is the open-ended category label, e.g. "Homicide"
	CrimeType string `json:"crime_type" db:"Crime_Type"`
	Cause     string `json:"cause" db:"Cause"`

	// Location is nil when the feed had neither an address nor a neighborhood
	Location *LocationLabel `json:"location,omitempty"`

	// Geo is nil when the feed had no usable coordinates
	Geo *GeoPoint `json:"geo,omitempty"`

	Victim Demographics `json:"victim"`
}

// TableName returns the database table name for the Incident model.
func (i *Incident) TableName() string {
	return constants.TableCaseInfo
}

// LocationLabel is the address and neighborhood of an incident.
type LocationLabel struct {
	Address      string `json:"address" db:"Address"`
	Neighborhood string `json:"neighborhood" db:"Neighborhood"`
	ZIPCode      string `json:"zip_code" db:"ZIP_Code"`
}

// TableName returns the database table name for the LocationLabel model.
func (l *LocationLabel) TableName() string {
	return constants.TableAddress
}

// GeoPoint is the WGS84 position of an incident.
type GeoPoint struct {
	Latitude  float64 `json:"lat" db:"Latitude"`
	Longitude float64 `json:"lon" db:"Longitude"`
}

// TableName returns the database table name for the GeoPoint model.
func (g *GeoPoint) TableName() string {
	return constants.TableGeo
}

// Demographics describes the victim. Blank values are stored as "Unknown".
type Demographics struct {
	AgeGroup string `json:"age_group" db:"Age_Group"`
	Sex      string `json:"sex" db:"Sex"`
	Race     string `json:"race" db:"Race"`
}

// TableName returns the database table name for the Demographics model.
func (d *Demographics) TableName() string {
	return constants.TableDemographics
}
