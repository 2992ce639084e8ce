package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/verdant/plantimport/internal/ioconfig"
	pkgconfig "github.com/verdant/plantimport/pkg/config"
)

var (
	cfgFile string
	cfg     *pkgconfig.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plantimport",
		Short: "plantimport manages the plant catalog and CSV imports",
		Long: `plantimport is a CLI tool for importing plant collections from CSV
files into a PostgreSQL catalog, with fuzzy taxonomy matching against
the existing entries.

The tool provides four main phases:
  - create: Create the catalog database schema
  - migrate: Apply schema migrations
  - check: Validate a CSV file without writing anything
  - run: Import a CSV file into the catalog

Configuration precedence (highest to lowest):
  1. CLI flags (--host, --port, etc.)
  2. Environment variables (PLANTIMPORT_*)
  3. Config file (config.yaml)
  4. Built-in defaults

Environment Variables:
  All configuration can be set via PLANTIMPORT_* environment
  variables. Nested fields use underscores
  (database.host → PLANTIMPORT_DATABASE_HOST).

  Examples:
    PLANTIMPORT_DATABASE_HOST            PostgreSQL host
    PLANTIMPORT_DATABASE_PORT            PostgreSQL port
    PLANTIMPORT_DATABASE_USER            PostgreSQL user
    PLANTIMPORT_DATABASE_PASSWORD        PostgreSQL password
    PLANTIMPORT_DATABASE_DATABASE        Database name
    PLANTIMPORT_IMPORT_MATCH_THRESHOLD   Fuzzy match threshold
    PLANTIMPORT_LOGGING_LEVEL            Log level (debug/info/warn/error)

  See 'go doc github.com/verdant/plantimport/pkg/config' for the
  complete list.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-generate config file on first run if it doesn't exist
			if cfgFile == "" {
				exists, err := ioconfig.ConfigFileExists()
				if err != nil {
					return fmt.Errorf("failed to check config file: %w", err)
				}

				if !exists {
					generatedPath, err := ioconfig.GenerateDefaultConfig()
					if err != nil {
						// Only warn, don't fail - can use defaults
						fmt.Printf(
							"Warning: could not generate config file: %v\n", err,
						)
					} else {
						fmt.Printf(
							"Generated default config at: %s\n", generatedPath,
						)
					}
				}
			}

			result, err := ioconfig.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = result.Config

			if _, err = ioconfig.BindFlags(cmd, cfg); err != nil {
				return err
			}

			switch result.Source {
			case "file":
				fmt.Printf("Using config from: %s\n", result.SourcePath)
			case "defaults+env":
				fmt.Println(
					"Using built-in defaults with environment variable overrides",
				)
			case "defaults":
				fmt.Println("Using built-in defaults (no config file)")
			}

			return nil
		},
	}

	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/plantimport/config.yaml)")
	rootCmd.PersistentFlags().String("host", "",
		"PostgreSQL host")
	rootCmd.PersistentFlags().Int("port", 0,
		"PostgreSQL port")
	rootCmd.PersistentFlags().String("user", "",
		"PostgreSQL user")
	rootCmd.PersistentFlags().String("password", "",
		"PostgreSQL password")
	rootCmd.PersistentFlags().String("database", "",
		"database name")
	rootCmd.PersistentFlags().String("ssl-mode", "",
		"PostgreSQL SSL mode")
	rootCmd.PersistentFlags().Int("jobs", 0,
		"number of concurrent matching workers")

	// Override version flag to use -V (consistent with other projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for plantimport")

	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getCheckCmd())
	rootCmd.AddCommand(getRunCmd())

	return rootCmd
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *pkgconfig.Config {
	return cfg
}
