package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treeseq/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	// An explicit but missing config file is an error; defaults apply only
	// when no path is forced.
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultRowsIncrement, cfg.Tables.RowsIncrement)
	assert.Equal(t, config.DefaultPayloadIncrement, cfg.Tables.PayloadIncrement)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "tables:\n  rows_increment: 64\n  payload_increment: 256\nlog_level: debug\nno_color: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Tables.RowsIncrement)
	assert.Equal(t, 256, cfg.Tables.PayloadIncrement)
	assert.True(t, cfg.NoColor)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Tables:   config.TablesConfig{RowsIncrement: 0, PayloadIncrement: 1},
		LogLevel: "info",
	}
	require.Error(t, cfg.Validate())

	cfg.Tables.RowsIncrement = 1
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "nope"
	require.Error(t, cfg.Validate())
}
