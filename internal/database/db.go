// Package database opens the incident store and hides the differences
// between the supported SQL engines behind a Dialect.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/crimestats/querygateway/internal/config"
	"github.com/crimestats/querygateway/internal/constants"
)

// Pool represents a database connection pool together with the SQL dialect
// of the engine behind it.
type Pool struct {
	*sql.DB

	Dialect      Dialect
	QueryTimeout time.Duration
}

// NewPool wraps an already opened handle. A nil dialect means SQLite.
func NewPool(db *sql.DB, dialect Dialect, queryTimeout time.Duration) *Pool {
	if dialect == nil {
		dialect = SQLiteDialect{}
	}
	return &Pool{DB: db, Dialect: dialect, QueryTimeout: queryTimeout}
}

// Open creates a connection pool for the configured engine without touching
// the store. sql.Open is lazy, so an absent or unreadable database file only
// surfaces on the first query or on Verify.
func Open(cfg *config.DatabaseSettings, writable bool) (*Pool, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("driver", dialect.Name()).
		Str("path", cfg.Path).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Bool("writable", writable).
		Msg("Opening database")

	db, err := sql.Open(dialect.Name(), cfg.ConnectionString(writable))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBConnMaxIdleTime)

	return NewPool(db, dialect, cfg.QueryTimeout), nil
}

// Verify pings the store once. The caller decides whether a failure is fatal.
func (p *Pool) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBConnectionTimeout)
	defer cancel()

	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("driver", p.Dialect.Name()).Msg("Successfully connected to database")
	return nil
}

// WithQueryTimeout bounds ctx by the configured per-query timeout, if any.
func (p *Pool) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.QueryTimeout)
}

// Close releases the pool. It is safe on a nil or never opened pool.
func (p *Pool) Close() {
	if p == nil || p.DB == nil {
		return
	}
	log.Info().Msg("Closing database connection pool")
	if err := p.DB.Close(); err != nil {
		log.Warn().Err(err).Msg("Database pool did not close cleanly")
	}
}

// Transaction runs fn in a single transaction, used by the dataset builder
// so that a load either lands completely or not at all. The transaction is
// rolled back when fn fails or panics; a panic is re-raised afterwards.
func (p *Pool) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := p.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		recovered := recover()
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Bool("panic", recovered != nil).Msg("Rollback failed")
			if recovered == nil {
				err = fmt.Errorf("failed to rollback transaction: %w (after: %v)", rbErr, err)
			}
		}
		if recovered != nil {
			panic(recovered)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		committed = true
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}

// HealthCheck backs GET /health: the pool must answer a ping and a trivial
// query within constants.DBHealthCheckTimeout.
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBHealthCheckTimeout)
	defer cancel()

	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var one int
	switch err := p.QueryRowContext(ctx, "SELECT 1").Scan(&one); {
	case err != nil:
		return fmt.Errorf("database query test failed: %w", err)
	case one != 1:
		return fmt.Errorf("database returned unexpected result: %d", one)
	}

	return nil
}
