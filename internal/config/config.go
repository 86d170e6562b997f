// Package config loads the gateway configuration from a YAML file, environment
// variables and built-in defaults, in that order of increasing precedence for
// the file and environment and as a fallback for anything left empty.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/crimestats/querygateway/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App      AppSettings      `yaml:"app"`
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	API      APISettings      `yaml:"api"`
	Logging  LoggingSettings  `yaml:"logging"`
	CORS     CORSSettings     `yaml:"cors"`
	Metrics  MetricsSettings  `yaml:"metrics"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"SERVER_TRUST_PROXY_HEADERS"`
}

// DatabaseSettings contains the storage engine connection settings.
// Path is used by the sqlite driver; Host, Port, Name, User and Password by
// the postgres and mysql mirrors.
type DatabaseSettings struct {
	Driver         string        `yaml:"driver" env:"DB_DRIVER"`
	Path           string        `yaml:"path" env:"DB_PATH"`
	Host           string        `yaml:"host" env:"DB_HOST"`
	Port           int           `yaml:"port" env:"DB_PORT"`
	Name           string        `yaml:"name" env:"DB_NAME"`
	User           string        `yaml:"user" env:"DB_USER"`
	Password       string        `yaml:"password" env:"DB_PASSWORD"`
	SSLMode        string        `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxConns       int           `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns       int           `yaml:"min_conns" env:"DB_MIN_CONNS"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT"`
	RequireOnStart bool          `yaml:"require_on_start" env:"DB_REQUIRE_ON_START"`
}

// APISettings controls how the query endpoints report failures and how
// often a single client may call them.
type APISettings struct {
	// RedactStorageErrors replaces storage engine messages with a generic one
	// in 500 responses. The detail is logged either way.
	RedactStorageErrors bool `yaml:"redact_storage_errors" env:"API_REDACT_STORAGE_ERRORS"`

	// RateLimit is the sustained number of query requests per second allowed
	// per client IP. Zero disables rate limiting.
	RateLimit float64 `yaml:"rate_limit" env:"API_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"API_RATE_BURST"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// MetricsSettings controls the Prometheus endpoint
type MetricsSettings struct {
	Enabled   bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE"`
}

// ConnectionString returns the driver-specific data source name. SQLite
// files are opened read-only unless writable is set; the gateway never sets
// it.
func (dbs *DatabaseSettings) ConnectionString(writable bool) string {
	switch strings.ToLower(dbs.Driver) {
	case constants.DriverPostgres:
		sslMode := dbs.SSLMode
		if sslMode == "" {
			sslMode = constants.PostgresSSLDisable
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
			dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, sslMode, constants.PostgresConnectTimeout,
		)

	case constants.DriverMySQL:
		// MariaDB/MySQL connection string format: username:password@tcp(host:port)/dbname
		password := dbs.Password
		if password != "" {
			password = ":" + password
		}
		return fmt.Sprintf(
			"%s%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_unicode_ci",
			dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
		)

	default:
		mode := "ro"
		if writable {
			mode = "rwc"
		}
		// SQLite percent-decodes the path of a file: URI
		path := (&url.URL{Path: dbs.Path}).EscapedPath()
		return fmt.Sprintf(
			"file:%s?mode=%s&_pragma=busy_timeout(%d)",
			path, mode, constants.DefaultSQLiteBusyTimeoutMS,
		)
	}
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// Load loads the configuration from a config file and environment variables.
// A missing file is not an error; defaults and the environment still apply.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig(config)

	return config, nil
}

// setDefaults fills every setting the file and the environment left empty.
func setDefaults(config *AppConfig) {
	orDefault(&config.App.Environment, constants.EnvDevelopment)
	orDefault(&config.App.Name, constants.DefaultAppName)
	orDefault(&config.App.Version, constants.DefaultAppVersion)

	orDefault(&config.Server.Port, constants.DefaultServerPort)
	orDefault(&config.Server.ReadTimeout, constants.DefaultReadTimeout)
	orDefault(&config.Server.WriteTimeout, constants.DefaultWriteTimeout)
	orDefault(&config.Server.ShutdownTimeout, constants.DefaultShutdownTimeout)

	db := &config.Database
	orDefault(&db.Driver, constants.DefaultDBDriver)
	db.Driver = strings.ToLower(db.Driver)
	if db.Driver == constants.DriverSQLite {
		orDefault(&db.Path, constants.DefaultDBPath)
	}
	orDefault(&db.MaxConns, constants.DefaultDBMaxConnections)
	orDefault(&db.MinConns, constants.DefaultDBMinConnections)
	orDefault(&db.QueryTimeout, constants.DBQueryTimeout)

	orDefault(&config.Logging.Level, constants.DefaultLogLevel)
	orDefault(&config.Logging.Format, constants.DefaultLogFormat)

	// Any origin unless narrowed
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}

	orDefault(&config.Metrics.Namespace, constants.DefaultMetricsNamespace)

	if config.API.RateLimit > 0 {
		orDefault(&config.API.RateBurst, constants.DefaultRateBurst)
	}
}

func orDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().
			Str("environment", config.App.Environment).
			Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	switch config.Database.Driver {
	case constants.DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database path must be set for the sqlite driver")
		}
	case constants.DriverPostgres, constants.DriverMySQL:
		if config.Database.Host == "" || config.Database.Name == "" {
			return fmt.Errorf("database host and name must be set for the %s driver", config.Database.Driver)
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user must be set")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.Database.MaxConns < 0 || config.Database.MinConns < 0 {
		return fmt.Errorf("database connection limits must not be negative")
	}

	if config.API.RateLimit < 0 || config.API.RateBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}

	if !slices.Contains(constants.ValidLogLevels, strings.ToLower(config.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	logCfg := *config
	if logCfg.Database.Password != "" {
		logCfg.Database.Password = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Bool("trust_proxy_headers", logCfg.Server.TrustProxyHeaders).
		Str("db_driver", logCfg.Database.Driver).
		Str("db_path", logCfg.Database.Path).
		Str("db_host", logCfg.Database.Host).
		Str("db_name", logCfg.Database.Name).
		Bool("db_require_on_start", logCfg.Database.RequireOnStart).
		Bool("redact_storage_errors", logCfg.API.RedactStorageErrors).
		Float64("rate_limit", logCfg.API.RateLimit).
		Str("log_level", logCfg.Logging.Level).
		Msg("Configuration loaded")
}
