package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "data/processed", cfg.Data.ProcessedDir)
	assert.Equal(t, "data/enriched", cfg.Data.EnrichedDir)
	assert.Equal(t, "https://dtf.epo.org/datav/public/datavisualisation/api/dataset/1/applicants", cfg.Extract.APIURL)
	assert.False(t, cfg.Extract.Headless)
	assert.Equal(t, 600, cfg.Extract.TimeoutSecs)
	assert.Equal(t, 1500, cfg.Extract.PageDelayMs)
	assert.InDelta(t, 0.95, cfg.Verify.CriticalCoverage, 0.001)
	assert.Equal(t, 3, cfg.Enrich.MaxPages)
	assert.Equal(t, 20, cfg.Enrich.TimeoutSecs)
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
	assert.InDelta(t, 2.0, cfg.Enrich.RequestsPerSec, 0.001)
	assert.Equal(t, int64(2_000_000), cfg.Enrich.MaxBodyBytes)
	assert.Equal(t, 60_000, cfg.Enrich.MaxTextChars)
	assert.Equal(t, 180_000, cfg.Enrich.MaxCombinedChars)
	assert.InDelta(t, 0.0, cfg.Positioning.Temperature, 0.001)
	assert.Equal(t, 60, cfg.Positioning.TimeoutSecs)
	assert.Equal(t, 40_000, cfg.Positioning.MaxInputChars)
	assert.Equal(t, int64(4096), cfg.Positioning.MaxTokens)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  raw_dir: /data/epo/raw
enrich:
  max_pages: 5
  concurrency: 8
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/epo/raw", cfg.Data.RawDir)
	assert.Equal(t, 5, cfg.Enrich.MaxPages)
	assert.Equal(t, 8, cfg.Enrich.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Untouched defaults survive a partial file.
	assert.Equal(t, "data/processed", cfg.Data.ProcessedDir)
	assert.Equal(t, 20, cfg.Enrich.TimeoutSecs)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DEEPTECH_ANTHROPIC_KEY", "sk-test-123")
	t.Setenv("DEEPTECH_LOG_LEVEL", "warn")
	t.Setenv("DEEPTECH_ENRICH_MAX_PAGES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.Anthropic.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Enrich.MaxPages)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
