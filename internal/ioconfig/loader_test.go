package ioconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/config"

	"github.com/verdant/plantimport/internal/ioconfig"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.example.org
  port: 5433
import:
  match_threshold: 0.85
  handle_duplicates: merge
logging:
  level: debug
  format: text
`)

	res, err := ioconfig.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", res.Source)
	assert.Equal(t, path, res.SourcePath)

	cfg := res.Config
	assert.Equal(t, "db.example.org", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 0.85, cfg.Import.MatchThreshold)
	assert.Equal(t, config.DuplicateMerge, cfg.Import.HandleDuplicates)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched settings keep their defaults.
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, 0.03, cfg.Import.TieEpsilon)
	assert.Equal(t, 2*time.Hour, cfg.Progress.Retention)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := ioconfig.Load(
		filepath.Join(t.TempDir(), "nope.yaml"),
	)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PLANTIMPORT_DATABASE_HOST", "env.example.org")
	t.Setenv("PLANTIMPORT_IMPORT_MATCH_THRESHOLD", "0.9")

	path := writeConfig(t, `
database:
  port: 5433
`)

	res, err := ioconfig.Load(path)
	require.NoError(t, err)

	// Env vars win over file values.
	assert.Equal(t, "env.example.org", res.Config.Database.Host)
	assert.Equal(t, 0.9, res.Config.Import.MatchThreshold)
	assert.Equal(t, 5433, res.Config.Database.Port)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
import:
  match_threshold: 7.0
`)

	_, err := ioconfig.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "database: [not: valid\n")

	_, err := ioconfig.Load(path)
	assert.Error(t, err)
}
