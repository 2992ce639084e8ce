package main

import (
	"context"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/verdant/plantimport/internal/iodb"
	"github.com/verdant/plantimport/internal/ioschema"
)

func getMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate database schema to latest version",
		Long: `Migrate updates the catalog database schema to the latest version.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks if the schema exists
  3. Runs GORM AutoMigrate to update it
  4. Preserves existing data (non-destructive)

GORM AutoMigrate:
  - Adds new tables if they don't exist
  - Adds new columns to existing tables
  - Adds missing indexes
  - Does NOT delete columns or tables (safe)

Use this command after updating plantimport to get schema changes.

Examples:
  plantimport migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}

	return migrateCmd
}

func runMigrate() error {
	ctx := context.Background()
	cfg := getConfig()

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if !hasTables {
		gn.Warn(`Warning: Database appears to be empty.
	Run 'plantimport create' first to initialize the schema.`)
		return nil
	}

	sm := ioschema.NewManager(op)

	gn.Info("Migrating schema to latest version...")
	if err := sm.Migrate(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Schema is now up to date.")

	return nil
}
