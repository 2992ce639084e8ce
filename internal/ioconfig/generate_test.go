package ioconfig_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant/plantimport/internal/ioconfig"
)

func TestGenerateDefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	exists, err := ioconfig.ConfigFileExists()
	require.NoError(t, err)
	assert.False(t, exists)

	path, err := ioconfig.GenerateDefaultConfig()
	require.NoError(t, err)
	assert.FileExists(t, path)

	exists, err = ioconfig.ConfigFileExists()
	require.NoError(t, err)
	assert.True(t, exists)

	// The generated template must survive a load.
	require.NoError(t, ioconfig.ValidateGeneratedConfig(path))

	res, err := ioconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", res.Source)
	require.NoError(t, res.Config.Validate())

	// No overwrite of an existing file.
	_, err = ioconfig.GenerateDefaultConfig()
	assert.Error(t, err)
}

func TestGeneratedConfigIsCommentedOut(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := ioconfig.GenerateDefaultConfig()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Everything ships commented out so defaults stay authoritative.
	res, err := ioconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", res.Config.Database.Host)
	assert.NotEmpty(t, data)
}
