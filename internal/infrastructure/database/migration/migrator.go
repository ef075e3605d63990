// Package migration applies the review schema with golang-migrate.  Each
// database package embeds its own SQL files; a source URL in configuration
// replaces the embedded set, which is how operators roll out local schema
// extensions without rebuilding.
package migration

import (
	stderrors "errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Migrator runs schema migrations against one database.
type Migrator struct {
	databaseURL string
	sourceURL   string
	embedded    fs.FS
	logger      logging.Logger
}

// New returns a Migrator for databaseURL.  When sourceURL is empty the
// migrations are read from embedded, whose root holds the *.up.sql and
// *.down.sql files.
func New(databaseURL, sourceURL string, embedded fs.FS, log logging.Logger) *Migrator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Migrator{
		databaseURL: databaseURL,
		sourceURL:   sourceURL,
		embedded:    embedded,
		logger:      log.Named("migration"),
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	if m.sourceURL != "" {
		mg, err := migrate.New(m.sourceURL, m.databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to create migrate instance").WithDetail(m.sourceURL)
		}
		return mg, nil
	}
	if m.embedded == nil {
		return nil, errors.New(errors.ErrCodeMigrationFailed, "no migration source configured")
	}
	src, err := iofs.New(m.embedded, ".")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to read embedded migrations")
	}
	mg, err := migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to create migrate instance")
	}
	return mg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Up: apply all pending migrations
// ─────────────────────────────────────────────────────────────────────────────

// Up applies every pending migration.  An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to run migrations")
	}

	version, dirty, err := mg.Version()
	if err != nil && !stderrors.Is(err, migrate.ErrNilVersion) {
		m.logger.Warn("Failed to get migration version", logging.Err(err))
	}
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Down: roll back by a number of steps
// ─────────────────────────────────────────────────────────────────────────────

// Down rolls the schema back by steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.InvalidParam("steps must be greater than 0").WithDetailf("got %d", steps)
	}
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeMigrationFailed, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to roll back migrations").WithDetailf("steps=%d", steps)
	}
	m.logger.Info("Database migrations rolled back", logging.Int("steps", steps))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Status: current version and dirty flag
// ─────────────────────────────────────────────────────────────────────────────

// Status returns the applied version and whether the last migration failed
// midway.  A database with no migrations reports version 0.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer mg.Close()

	version, dirty, err = mg.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to get migration version")
	}
	return version, dirty, nil
}

// Force records version as applied without running anything.  It is the
// recovery path for a dirty schema after the failed statement was fixed by
// hand; -1 clears the version.
func (m *Migrator) Force(version int) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to force version").WithDetailf("version=%d", version)
	}
	m.logger.Warn("Migration version forced", logging.Int("version", version))
	return nil
}

//Personal.AI order the ending
