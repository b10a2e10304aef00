package main

import (
	"fmt"
	"strconv"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return a.migrateUp()
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid step count %q: %w", args[0], err)
					}
					steps = n
				}
				return a.withMigrationRunner(func(r *database.MigrationRunner) error {
					return r.RollbackMigrations(steps)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withMigrationRunner(func(r *database.MigrationRunner) error {
					version, dirty, err := r.GetMigrationStatus()
					if err != nil {
						return err
					}
					cmd.Printf("version=%d dirty=%t\n", version, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

// migrateUp runs the SQL migrations on postgres and AutoMigrate on sqlite.
func (a *app) migrateUp() error {
	db, err := database.New(&a.cfg.Database, database.GormLogLevel(a.cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	if a.cfg.Database.Driver == config.DriverSQLite {
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return database.RunSQLMigrations(sqlDB, &a.cfg.Database)
}

func (a *app) withMigrationRunner(fn func(*database.MigrationRunner) error) error {
	if a.cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("versioned migrations require the %s driver", config.DriverPostgres)
	}

	db, err := database.New(&a.cfg.Database, database.GormLogLevel(a.cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return fn(database.NewMigrationRunner(sqlDB, a.cfg.Database.MigrationsPath))
}
