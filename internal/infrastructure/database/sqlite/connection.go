// Package sqlite opens the embedded single-file database that can back the
// review dataset, for deployments without a PostgreSQL server.
package sqlite

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

const driverName = "sqlite"

// pragmas are applied to every connection the pool opens.
const pragmas = "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Config locates the database file.
type Config struct {
	Path string
	// MigrationPath replaces the embedded schema when set.
	MigrationPath string
}

// Connection wraps the sqlx handle of one database file.
type Connection struct {
	db     *sqlx.DB
	path   string
	logger logging.Logger
	once   sync.Once
}

// Open opens (creating if needed) the database file at cfg.Path.
func Open(cfg Config, log logging.Logger) (*Connection, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Path == "" {
		return nil, errors.InvalidParam("sqlite path is required")
	}

	db, err := sqlx.Open(driverName, cfg.Path+pragmas)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open sqlite").WithDetail(cfg.Path)
	}
	// One writer; WAL still lets readers proceed.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "sqlite ping failed").WithDetail(cfg.Path)
	}

	log.Info("Opened SQLite database", logging.String("path", cfg.Path))
	return &Connection{db: db, path: cfg.Path, logger: log}, nil
}

// DB returns the sqlx handle.
func (c *Connection) DB() *sqlx.DB { return c.db }

// Path returns the database file path.
func (c *Connection) Path() string { return c.path }

// HealthCheck pings the database.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "sqlite health check failed")
	}
	return nil
}

// Close releases the database file.  Repeated calls are no-ops.
func (c *Connection) Close() error {
	var err error
	c.once.Do(func() {
		err = c.db.Close()
		if err != nil {
			c.logger.Error("Failed to close SQLite database", logging.Err(err))
		}
	})
	return err
}

//Personal.AI order the ending
