// Package config provides configuration management for plantimport.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Loading from files and environment variables happens in
// internal/ioconfig.
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Environment Variables
//
// Use PLANTIMPORT_ prefix with underscores for nesting:
//
//	PLANTIMPORT_DATABASE_HOST=localhost
//	PLANTIMPORT_DATABASE_PORT=5432
//	PLANTIMPORT_IMPORT_MATCH_THRESHOLD=0.7
//	PLANTIMPORT_LOGGING_LEVEL=info
package config

import (
	"fmt"
	"runtime"
	"time"
)

// DuplicatePolicy governs what happens when an imported taxonomy
// matches a catalog entry with high confidence.
type DuplicatePolicy string

const (
	// DuplicateSkip records a duplicate_plant conflict and skips the row.
	DuplicateSkip DuplicatePolicy = "skip"
	// DuplicateMerge persists the row against the existing catalog entry.
	DuplicateMerge DuplicatePolicy = "merge"
	// DuplicateCreateNew creates a new catalog entry despite the match.
	DuplicateCreateNew DuplicatePolicy = "create_new"
)

// Config represents the complete plantimport configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Import contains pipeline policy settings.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// Progress contains progress-store retention settings.
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// JobsNumber is the number of concurrent workers for the matching
	// stage. Defaults to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ImportConfig contains policy settings for the import pipeline.
type ImportConfig struct {
	// MatchThreshold is the minimum confidence for a fuzzy match to be
	// accepted without manual review. Range (0,1].
	MatchThreshold float64 `mapstructure:"match_threshold" yaml:"match_threshold"`

	// TieEpsilon is the score delta under which two candidate matches
	// are considered an ambiguous tie, forcing manual review.
	TieEpsilon float64 `mapstructure:"tie_epsilon" yaml:"tie_epsilon"`

	// MinScore is the minimum similarity for a catalog entry to appear
	// among match candidates at all.
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`

	// HandleDuplicates selects the resolution for high-confidence
	// duplicates: "skip", "merge" or "create_new".
	HandleDuplicates DuplicatePolicy `mapstructure:"handle_duplicates" yaml:"handle_duplicates"`

	// CreateMissingPlants allows unmatched taxonomies to create new
	// catalog entries. When false such rows become conflicts.
	CreateMissingPlants bool `mapstructure:"create_missing_plants" yaml:"create_missing_plants"`

	// DateFormat pins date parsing to one layout. Empty means
	// auto-detect among YYYY-MM-DD, MM/DD/YYYY and DD/MM/YYYY.
	DateFormat string `mapstructure:"date_format" yaml:"date_format"`
}

// ProgressConfig contains retention settings for the in-memory
// progress store.
type ProgressConfig struct {
	// Retention is how long terminal jobs stay available for polling.
	Retention time.Duration `mapstructure:"retention" yaml:"retention"`

	// SweepInterval is how often the eviction sweep runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// LoggingConfig provides typical settings for application logs.
type LoggingConfig struct {
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level" yaml:"level"`

	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns a Config with sensible default values.
// The returned config is always valid and ready to use.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "plantimport",
			SSLMode:  "disable",
		},
		Import: ImportConfig{
			MatchThreshold:      0.7,
			TieEpsilon:          0.03,
			MinScore:            0.4,
			HandleDuplicates:    DuplicateSkip,
			CreateMissingPlants: true,
		},
		Progress: ProgressConfig{
			Retention:     2 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		JobsNumber: runtime.NumCPU(),
	}
}

// MergeWithDefaults fills zero-valued fields from Defaults().
// Booleans are left as decoded since false is a meaningful setting.
func (c *Config) MergeWithDefaults() {
	d := Defaults()

	if c.Database.Host == "" {
		c.Database.Host = d.Database.Host
	}
	if c.Database.Port == 0 {
		c.Database.Port = d.Database.Port
	}
	if c.Database.User == "" {
		c.Database.User = d.Database.User
	}
	if c.Database.Password == "" {
		c.Database.Password = d.Database.Password
	}
	if c.Database.Database == "" {
		c.Database.Database = d.Database.Database
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = d.Database.SSLMode
	}

	if c.Import.MatchThreshold == 0 {
		c.Import.MatchThreshold = d.Import.MatchThreshold
	}
	if c.Import.TieEpsilon == 0 {
		c.Import.TieEpsilon = d.Import.TieEpsilon
	}
	if c.Import.MinScore == 0 {
		c.Import.MinScore = d.Import.MinScore
	}
	if c.Import.HandleDuplicates == "" {
		c.Import.HandleDuplicates = d.Import.HandleDuplicates
	}

	if c.Progress.Retention == 0 {
		c.Progress.Retention = d.Progress.Retention
	}
	if c.Progress.SweepInterval == 0 {
		c.Progress.SweepInterval = d.Progress.SweepInterval
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}

	if c.JobsNumber == 0 {
		c.JobsNumber = d.JobsNumber
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("database port out of range: %d", c.Database.Port)
	}

	switch c.Database.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid ssl_mode: %q", c.Database.SSLMode)
	}

	if c.Import.MatchThreshold <= 0 || c.Import.MatchThreshold > 1 {
		return fmt.Errorf(
			"match_threshold must be in (0,1]: %v",
			c.Import.MatchThreshold,
		)
	}
	if c.Import.TieEpsilon < 0 || c.Import.TieEpsilon >= 0.5 {
		return fmt.Errorf("tie_epsilon out of range: %v", c.Import.TieEpsilon)
	}
	if c.Import.MinScore < 0 || c.Import.MinScore > 1 {
		return fmt.Errorf("min_score out of range: %v", c.Import.MinScore)
	}

	switch c.Import.HandleDuplicates {
	case DuplicateSkip, DuplicateMerge, DuplicateCreateNew:
	default:
		return fmt.Errorf(
			"invalid handle_duplicates: %q",
			c.Import.HandleDuplicates,
		)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	if c.Progress.Retention <= 0 {
		return fmt.Errorf(
			"progress retention must be positive: %v",
			c.Progress.Retention,
		)
	}
	if c.Progress.SweepInterval <= 0 {
		return fmt.Errorf(
			"progress sweep_interval must be positive: %v",
			c.Progress.SweepInterval,
		)
	}

	if c.JobsNumber < 1 {
		return fmt.Errorf("jobs_number must be at least 1: %d", c.JobsNumber)
	}

	return nil
}
