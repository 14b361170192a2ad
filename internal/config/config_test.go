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

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Recon.MaxConcurrent)
	assert.InDelta(t, 0.85, cfg.Recon.Resolver.ConfidenceThreshold, 0.001)
	assert.InDelta(t, 0.85, cfg.Recon.Resolver.PartialOverlap, 0.001)
	assert.Equal(t, 3, cfg.Recon.Resolver.MinSharedTokens)
	assert.Equal(t, 1, cfg.Recon.Resolver.MaxTokenCountDiff)
	assert.InDelta(t, 0.80, cfg.Recon.Resolver.ModelJaccard, 0.001)
	assert.InDelta(t, 0.5, cfg.Audit.PerfectStoreShare, 0.001)
	assert.InDelta(t, 0.1, cfg.Audit.FlaggedStoreShare, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/posm
log:
  level: debug
  format: console
server:
  port: 9090
recon:
  max_concurrent: 4
  resolver:
    confidence_threshold: 0.9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Recon.MaxConcurrent)
	assert.InDelta(t, 0.9, cfg.Recon.Resolver.ConfidenceThreshold, 0.001)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.80, cfg.Recon.Resolver.ModelJaccard, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("POSM_STORE_DRIVER", "postgres")
	t.Setenv("POSM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate_Serve(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidate_Thresholds(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Recon.Resolver.ConfidenceThreshold = 1.5
	err = cfg.Validate("compute")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "confidence_threshold")

	cfg.Recon.Resolver.ConfidenceThreshold = 0.85
	cfg.Recon.MaxConcurrent = 0
	err = cfg.Validate("compute")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent")
}

func TestValidate_Driver(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Store.Driver = "oracle"
	err = cfg.Validate("compute")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")

	cfg.Store.Driver = "postgres"
	assert.NoError(t, cfg.Validate("compute"))
}

func TestValidate_UnknownMode(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
