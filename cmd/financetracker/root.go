package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"finance-tracker/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs after PersistentPreRunE has run
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "financetracker",
		Short:         "Personal finance tracker API",
		Long:          "GraphQL backend for tracking transactions, category statistics and AI financial advice.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("CONFIG_FILE"), "path to a TOML config file (env CONFIG_FILE)")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return root
}

func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// the config loader logs, so install a logger before it runs
	a.logger = newLogger(os.Getenv("APP_ENV"), slog.LevelInfo)
	slog.SetDefault(a.logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = newLogger(cfg.Server.Environment, cfg.SlogLevel())
	slog.SetDefault(a.logger)
	return nil
}

// newLogger writes JSON in production and text everywhere else
func newLogger(environment string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if environment == config.EnvProduction {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
