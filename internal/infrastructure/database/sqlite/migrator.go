package sqlite

import (
	"embed"
	"io/fs"

	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // SQLite driver

	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/migration"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded review schema.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewMigrator returns a Migrator for the database file at cfg.Path.
func NewMigrator(cfg Config, log logging.Logger) *migration.Migrator {
	return migration.New("sqlite://"+cfg.Path, cfg.MigrationPath, Migrations(), log)
}

//Personal.AI order the ending
