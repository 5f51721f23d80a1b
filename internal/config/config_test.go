package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper/internal/classifier"
	"mapper/internal/match"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, match.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, DefaultDBPath, cfg.Storage.DBPath)
	assert.Equal(t, match.DefaultMaxRounds, cfg.Match.MaxRounds)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
match:
  absolute_threshold: 0.3
  workers: 3
  strict_names: true
  levels: [initial, full]
storage:
  db_path: runs.db
weights:
  class:
    class_kind: 12
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Match.AbsoluteThreshold)
	assert.Equal(t, match.DefaultRelativeThreshold, cfg.Match.RelativeThreshold, "unset keys keep their default")
	assert.Equal(t, 3, cfg.Match.Workers)
	assert.True(t, cfg.Match.StrictNames)
	assert.Equal(t, "runs.db", cfg.Storage.DBPath)
	assert.Equal(t, 12.0, cfg.Weights["class"]["class_kind"])

	levels, err := cfg.ParsedLevels()
	require.NoError(t, err)
	assert.Equal(t, []classifier.Level{classifier.LevelInitial, classifier.LevelFull}, levels)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MAPPER_DB", "/tmp/override.db")
	t.Setenv("MAPPER_WORKERS", "7")
	t.Setenv("MAPPER_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(writeConfig(t, "storage:\n  db_path: file.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.DBPath)
	assert.Equal(t, 7, cfg.Match.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("MAPPER_WORKERS", "many")
	_, err = LoadConfig(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"threshold": "match:\n  absolute_threshold: 1.5\n",
		"workers":   "match:\n  workers: -1\n",
		"level":     "match:\n  levels: [bogus]\n",
		"weight":    "weights:\n  method:\n    position: 0\n",
		"yaml":      "match: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
