package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencds/icd/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, int64(864000), cfg.DeltaSeconds)
	assert.Equal(t, int64(86400), cfg.IncrementalPeriodSeconds)
	assert.Equal(t, 20000, cfg.MaxContacts)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 864000*time.Second, cfg.Delta())
	assert.Equal(t, 86400*time.Second, cfg.IncrementalPeriod())
}

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
delta_seconds: 100
max_contacts: 50
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, int64(100), cfg.DeltaSeconds)
	assert.Equal(t, 50, cfg.MaxContacts)
	// Untouched fields keep their defaults.
	assert.Equal(t, int64(86400), cfg.IncrementalPeriodSeconds)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_addr: ":9090"`), 0o600))

	t.Setenv("ICD_LISTEN_ADDR", ":7070")
	t.Setenv("ICD_DELTA_SECONDS", "42")
	t.Setenv("ICD_P_INC_SECONDS", "43")
	t.Setenv("ICD_MAX_CONTACTS", "7")
	t.Setenv("ICD_LOG_FORMAT", "json")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, int64(42), cfg.DeltaSeconds)
	assert.Equal(t, int64(43), cfg.IncrementalPeriodSeconds)
	assert.Equal(t, 7, cfg.MaxContacts)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidEnvIntegerErrors(t *testing.T) {
	t.Setenv("ICD_MAX_CONTACTS", "not-a-number")
	_, err := config.Load("")
	assert.Error(t, err)
}
