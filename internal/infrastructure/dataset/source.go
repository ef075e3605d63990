// Package dataset loads the immutable review snapshot from the configured
// backend: a local CSV export, the same export in an S3-compatible bucket,
// or the reviews schema in PostgreSQL or SQLite.
package dataset

import (
	"context"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/domain/review"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/migration"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/postgres"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/database/sqlite"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/storage/minio"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

const tracerName = "github.com/turtacn/ReviewPulse/internal/infrastructure/dataset"

// Source produces the review dataset.  Load is called once at process start.
type Source interface {
	Name() string
	Load(ctx context.Context) (*review.Dataset, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Configuration mapping
// ─────────────────────────────────────────────────────────────────────────────

// Taxonomy builds the configured topic taxonomy, falling back to the default
// dealership topics.
func Taxonomy(cfg config.DatasetConfig) (*review.Taxonomy, error) {
	if len(cfg.Topics) == 0 {
		return review.DefaultTaxonomy(), nil
	}
	return review.NewTaxonomy(cfg.Topics)
}

// CSVReaderFor builds the export reader for cfg.
func CSVReaderFor(cfg config.DatasetConfig, taxonomy *review.Taxonomy) *CSVReader {
	delim, _ := utf8.DecodeRuneInString(cfg.Delimiter)
	if delim == utf8.RuneError {
		delim = ','
	}
	return NewCSVReader(taxonomy, Columns{
		Entity: cfg.Columns.Entity,
		Date:   cfg.Columns.Date,
		Rating: cfg.Columns.Rating,
		Text:   cfg.Columns.Text,
	}, delim)
}

// PostgresConfig maps the database section onto the connection config.
func PostgresConfig(cfg config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		MigrationPath:   cfg.MigrationPath,
	}
}

// SQLiteConfig maps the sqlite section onto the connection config.
func SQLiteConfig(cfg config.SQLiteConfig) sqlite.Config {
	return sqlite.Config{Path: cfg.Path, MigrationPath: cfg.MigrationPath}
}

// MinIOConfig maps the minio section onto the client config.
func MinIOConfig(cfg config.MinIOConfig) *minio.MinIOConfig {
	return &minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
	}
}

// NewMigrator returns the schema migrator for SQL-backed sources.
func NewMigrator(cfg *config.Config, log logging.Logger) (*migration.Migrator, error) {
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		return postgres.NewMigrator(PostgresConfig(cfg.Database), log), nil
	case config.SourceSQLite:
		return sqlite.NewMigrator(SQLiteConfig(cfg.SQLite), log), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedSource, "source has no database schema").WithDetail(cfg.Dataset.Source)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory
// ─────────────────────────────────────────────────────────────────────────────

// Open connects to the configured backend and returns its Source.  The
// returned close function releases the connection and is never nil.  SQL
// backends are migrated before the Source is returned.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (Source, func() error, error) {
	noop := func() error { return nil }
	if log == nil {
		log = logging.NewNopLogger()
	}
	taxonomy, err := Taxonomy(cfg.Dataset)
	if err != nil {
		return nil, noop, err
	}

	switch cfg.Dataset.Source {
	case config.SourceCSV:
		return NewFileSource(cfg.Dataset.Path, CSVReaderFor(cfg.Dataset, taxonomy)), noop, nil

	case config.SourceMinIO:
		client, err := minio.NewMinIOClient(MinIOConfig(cfg.MinIO), log)
		if err != nil {
			return nil, noop, err
		}
		repo := minio.NewMinIORepository(client, log)
		return NewObjectSource(repo, cfg.MinIO.Object, CSVReaderFor(cfg.Dataset, taxonomy)), client.Close, nil

	case config.SourcePostgres:
		pgCfg := PostgresConfig(cfg.Database)
		if err := postgres.NewMigrator(pgCfg, log).Up(); err != nil {
			return nil, noop, err
		}
		conn, err := postgres.NewConnection(pgCfg, log)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLSource(config.SourcePostgres, conn.DB(), taxonomy), conn.Close, nil

	case config.SourceSQLite:
		sqCfg := SQLiteConfig(cfg.SQLite)
		if err := sqlite.NewMigrator(sqCfg, log).Up(); err != nil {
			return nil, noop, err
		}
		conn, err := sqlite.Open(sqCfg, log)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLSource(config.SourceSQLite, conn.DB(), taxonomy), conn.Close, nil
	}
	return nil, noop, errors.New(errors.ErrCodeUnsupportedSource, "unknown dataset source").WithDetail(cfg.Dataset.Source)
}

// ─────────────────────────────────────────────────────────────────────────────
// Instrumented load
// ─────────────────────────────────────────────────────────────────────────────

// Load runs src.Load inside a span, records load metrics and logs the
// resulting snapshot.  metrics may be nil.
func Load(ctx context.Context, src Source, metrics *prometheus.AppMetrics, log logging.Logger) (*review.Dataset, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dataset.load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.source", src.Name()))

	start := time.Now()
	ds, err := src.Load(ctx)
	elapsed := time.Since(start)
	if err != nil {
		code := errors.GetCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		if metrics != nil {
			prometheus.RecordError(metrics, "dataset", string(code))
		}
		log.Error("Dataset load failed",
			logging.String("source", src.Name()),
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
		)
		return nil, err
	}

	if metrics != nil {
		prometheus.RecordDatasetLoad(metrics, src.Name(), ds.Len(), elapsed)
	}
	first, last := ds.DateRange()
	span.SetAttributes(
		attribute.Int("dataset.records", ds.Len()),
		attribute.String("dataset.fingerprint", ds.Fingerprint()),
	)
	log.Info("Dataset loaded",
		logging.String("source", src.Name()),
		logging.Int("records", ds.Len()),
		logging.Int("entities", len(ds.Entities())),
		logging.Int("topics", ds.Taxonomy().Len()),
		logging.String("first_date", first.Format(review.DateLayout)),
		logging.String("last_date", last.Format(review.DateLayout)),
		logging.String("fingerprint", ds.Fingerprint()),
		logging.Duration("elapsed", elapsed),
	)
	return ds, nil
}

//Personal.AI order the ending
