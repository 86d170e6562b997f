// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values used when the configuration file
// and environment leave a setting empty.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the port the dashboard backend has always listened on.
	DefaultServerPort = 3000

	// DefaultAppName identifies the service in logs.
	DefaultAppName = "crime-query-gateway"

	// DefaultAppVersion is reported by /version when no build version is injected.
	DefaultAppVersion = "1.0.0"

	// DefaultDBDriver is the embedded storage engine.
	DefaultDBDriver = DriverSQLite

	// DefaultDBPath is the location of the read-only incident database file.
	DefaultDBPath = "./database/crime_data.db"

	// DefaultDBMaxConnections is the default maximum number of open database connections.
	DefaultDBMaxConnections = 10

	// DefaultDBMinConnections is the default number of idle connections kept in the pool.
	DefaultDBMinConnections = 2

	// DefaultSQLiteBusyTimeoutMS is how long SQLite waits on a locked file before failing.
	DefaultSQLiteBusyTimeoutMS = 5000

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultMetricsNamespace prefixes every exported Prometheus metric.
	DefaultMetricsNamespace = "querygateway"

	// DefaultRateBurst is the bucket size used when a rate limit is set without a burst.
	DefaultRateBurst = 20
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with console logging enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment.
	EnvProduction = "production"
)

// Valid log levels accepted by the logging configuration.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}
