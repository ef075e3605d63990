package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/ReviewPulse/internal/bootstrap"
	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/dataset"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// NewDatasetCmd creates the dataset command group.
func NewDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect, import and migrate the review dataset",
	}
	cmd.AddCommand(newDatasetInfoCmd(), newDatasetImportCmd(), newMigrateCmd())
	return cmd
}

func newDatasetInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Load the dataset and describe it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, cc *CLIContext, app *bootstrap.App) error {
				return Render(cmd.OutOrStdout(), cc.OutputFormat, app.Service.Meta(ctx))
			})
		},
	}
}

type importResult struct {
	Source   string `json:"source" yaml:"source"`
	File     string `json:"file" yaml:"file"`
	Imported int    `json:"imported" yaml:"imported"`
	Replaced bool   `json:"replaced" yaml:"replaced"`
}

func newDatasetImportCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV export into the configured SQL source",
		Long: "Parse FILE with the configured CSV layout and topic taxonomy and store the\n" +
			"reviews in the postgres or sqlite source.  The schema is migrated first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()

			n, err := importCSV(ctx, cc.Config, cc.Logger, args[0], replace)
			if err != nil {
				return err
			}
			return Render(cmd.OutOrStdout(), cc.OutputFormat, importResult{
				Source: cc.Config.Dataset.Source, File: args[0], Imported: n, Replaced: replace,
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing reviews before importing")
	return cmd
}

func importCSV(ctx context.Context, cfg *config.Config, log logging.Logger, path string, replace bool) (int, error) {
	tax, err := dataset.Taxonomy(cfg.Dataset)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatasetUnavailable, "cannot open import file").WithDetail(path)
	}
	defer f.Close()

	ds, err := dataset.CSVReaderFor(cfg.Dataset, tax).Read(f)
	if err != nil {
		return 0, err
	}

	src, closeFn, err := dataset.Open(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	sqlSrc, ok := src.(*dataset.SQLSource)
	if !ok {
		return 0, errors.New(errors.ErrCodeUnsupportedSource, "import needs a SQL dataset source").WithDetail(cfg.Dataset.Source)
	}
	n, err := dataset.Store(ctx, sqlSrc.DB(), ds, replace)
	if err != nil {
		return 0, err
	}
	log.Info("Dataset imported",
		logging.String("source", sqlSrc.Name()),
		logging.String("file", path),
		logging.Int("records", n),
	)
	return n, nil
}

type migrationStatus struct {
	Source  string `json:"source" yaml:"source"`
	Version uint   `json:"version" yaml:"version"`
	Dirty   bool   `json:"dirty" yaml:"dirty"`
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQL dataset schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("rolled back %d step(s)", steps))
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					PrintSuccess(cmd, "schema is up to date")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cc, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				return withMigrator(cmd, func(m migrator) error {
					v, dirty, err := m.Status()
					if err != nil {
						return err
					}
					return Render(cmd.OutOrStdout(), cc.OutputFormat, migrationStatus{
						Source: cc.Config.Dataset.Source, Version: v, Dirty: dirty,
					})
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam("VERSION must be an integer").WithDetail(args[0])
				}
				return withMigrator(cmd, func(m migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					PrintSuccess(cmd, fmt.Sprintf("schema version forced to %d", v))
					return nil
				})
			},
		},
	)
	return cmd
}

type migrator interface {
	Up() error
	Down(steps int) error
	Status() (uint, bool, error)
	Force(version int) error
}

func withMigrator(cmd *cobra.Command, fn func(m migrator) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	m, err := dataset.NewMigrator(cc.Config, cc.Logger)
	if err != nil {
		return err
	}
	return fn(m)
}

//Personal.AI order the ending
