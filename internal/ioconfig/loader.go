// Package ioconfig loads configuration from YAML files, environment
// variables and CLI flags. This is an impure package; the parsed
// settings live in pkg/config.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/verdant/plantimport/pkg/config"
)

// LoadResult contains the loaded configuration and metadata about the
// source.
type LoadResult struct {
	Config *config.Config

	// SourcePath is the config file used, empty when running on
	// defaults.
	SourcePath string

	// Source is "file", "defaults" or "defaults+env".
	Source string
}

// Load reads configuration from a YAML file and returns a validated
// Config with source info. If configPath is empty, the default
// location ~/.config/plantimport/config.yaml is tried.
//
// Precedence: flags > env vars > config file > defaults.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	v.SetEnvPrefix("PLANTIMPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults go in before reading the file so AutomaticEnv knows
	// which keys to check for env vars.
	defaults := config.Defaults()
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("import.match_threshold", defaults.Import.MatchThreshold)
	v.SetDefault("import.tie_epsilon", defaults.Import.TieEpsilon)
	v.SetDefault("import.min_score", defaults.Import.MinScore)
	v.SetDefault("import.handle_duplicates",
		string(defaults.Import.HandleDuplicates))
	v.SetDefault("import.create_missing_plants",
		defaults.Import.CreateMissingPlants)
	v.SetDefault("import.date_format", defaults.Import.DateFormat)
	v.SetDefault("progress.retention", defaults.Progress.Retention)
	v.SetDefault("progress.sweep_interval", defaults.Progress.SweepInterval)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				v.SetConfigFile(defaultPath)
			}
		}
	}

	configFileRead := false
	usedConfigPath := ""

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configPath != "" {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
			// No config file anywhere, run on defaults + env vars.
		} else if configPath == "" && v.ConfigFileUsed() == "" {
			// Nothing was selected to read; same as not found.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     &cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

// hasEnvVars checks if any PLANTIMPORT_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PLANTIMPORT_") {
			return true
		}
	}
	return false
}

// BindFlags overrides config values with CLI flags that were set.
// Flags take precedence over config file and env var values.
func BindFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	v := viper.New()

	// Persistent flags live on the root command; subcommands see them
	// as inherited.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, fmt.Errorf("failed to bind inherited flags: %w", err)
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}

	if changed("host") {
		cfg.Database.Host = v.GetString("host")
	}
	if changed("port") {
		cfg.Database.Port = v.GetInt("port")
	}
	if changed("user") {
		cfg.Database.User = v.GetString("user")
	}
	if changed("password") {
		cfg.Database.Password = v.GetString("password")
	}
	if changed("database") {
		cfg.Database.Database = v.GetString("database")
	}
	if changed("ssl-mode") {
		cfg.Database.SSLMode = v.GetString("ssl-mode")
	}
	if changed("jobs") {
		cfg.JobsNumber = v.GetInt("jobs")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(
			"invalid configuration after flag binding: %w", err,
		)
	}

	return cfg, nil
}
