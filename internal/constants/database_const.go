// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file names the relations of the incident dataset, the
// columns the gateway reads, and the output aliases that become JSON keys.
// The physical names follow the dataset produced by the upstream ETL and must
// not be changed without regenerating the database file.
package constants

// Table Names of the incident dataset.
const (
	// TableCaseInfo holds one row per incident.
	TableCaseInfo = "CaseInfo"

	// TableAddress holds the optional address/neighborhood label of an incident.
	TableAddress = "Address"

	// TableGeo holds the optional latitude/longitude of an incident.
	TableGeo = "Geo"

	// TableDemographics holds victim demographics. Loaded but never queried by the gateway.
	TableDemographics = "Demographics"
)

// Column Names of the incident dataset.
const (
	ColumnObjectID        = "ObjectId"
	ColumnDate            = "Date"
	ColumnCaseNumber      = "Case_Number"
	ColumnDivisionName    = "Division_Name"
	ColumnCouncilDistrict = "Council_District"
	ColumnCrimeType       = "Crime_Type"
	ColumnCause           = "Cause"
	ColumnAddress         = "Address"
	ColumnNeighborhood    = "Neighborhood"
	ColumnZIPCode         = "ZIP_Code"
	ColumnLatitude        = "Latitude"
	ColumnLongitude       = "Longitude"
	ColumnAgeGroup        = "Age_Group"
	ColumnSex             = "Sex"
	ColumnRace            = "Race"
)

// Output Aliases are the column aliases of the gateway's queries. They are
// serialized verbatim as JSON object keys.
const (
	AliasYear                  = "year"
	AliasMonth                 = "month"
	AliasDate                  = "date"
	AliasID                    = "id"
	AliasNeighborhood          = "neighborhood"
	AliasCrimeType             = "crime_type"
	AliasCategory              = "Crime_Type"
	AliasTotalShootings        = "total_shootings"
	AliasNeighborhoodsImpacted = "neighborhoods_impacted"
	AliasInjured               = "Injured"
	AliasFatal                 = "Fatal"
	AliasAI                    = "AI"
	AliasLatitude              = "lat"
	AliasLongitude             = "lon"
)

// Incident Categories that the neighborhood breakdown aggregates. The category
// set is open; any other label is counted by none of the three counters.
const (
	CategoryNonFatalShooting = "Non-Fatal Shooting"
	CategoryHomicide         = "Homicide"
	CategoryShotspotterAlert = "Shotspotter Alert"
)

// Database Drivers define the storage engines the gateway can read from.
const (
	// DriverSQLite is the embedded database the dataset ships as.
	DriverSQLite = "sqlite"

	// DriverPostgres reads a PostgreSQL mirror of the dataset.
	DriverPostgres = "postgres"

	// DriverMySQL reads a MySQL/MariaDB mirror of the dataset.
	DriverMySQL = "mysql"
)

// PostgreSQL connection string parameters
const (
	PostgresSSLDisable     = "disable"
	PostgresConnectTimeout = 15
)

// DateLayout is the stored shape of CaseInfo.Date. Year and month are read
// from its first seven characters.
const DateLayout = "2006-01-02"
