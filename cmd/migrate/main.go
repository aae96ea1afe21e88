// Command migrate applies or rolls back the run history schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/database"
	"github.com/pageza/recipepdf/internal/logging"
	"github.com/pageza/recipepdf/internal/models"
)

var (
	configPath string
	rollback   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the run history migrations",
	Long: `Apply the run history migrations to the database named by database.dsn.

Examples:
  # Apply pending migrations
  RECIPEPDF_DATABASE_DSN=postgres://... migrate

  # Roll back the last migration
  migrate --rollback`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("database.dsn is not set")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	out := cmd.OutOrStdout()
	if rollback {
		name, err := database.RollbackLast(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Successfully rolled back migration: %s\n", name)
		return nil
	}

	applied, err := database.RunMigrations(db, &models.Run{})
	if err != nil {
		return err
	}
	for _, name := range applied {
		logger.Info("applied migration", zap.String("name", name))
		fmt.Fprintf(out, "Successfully applied migration: %s\n", name)
	}
	fmt.Fprintln(out, "All migrations applied successfully.")
	return nil
}
