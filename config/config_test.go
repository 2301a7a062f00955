package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "disk", cfg.Uploads.Backend)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Contains(t, cfg.Uploads.AllowedTypes, "image/png")
	assert.True(t, cfg.InsecureSecret())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("http_port: 9000\ntoken_ttl: 0s\ndatabase:\n  driver: sqlite\n  url: test.db\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("PINBOARD_JWT_SECRET", "from-env")
	t.Setenv("PINBOARD_DATABASE_URL", "override.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "override.db", cfg.Database.URL)
	assert.Equal(t, "from-env", cfg.JwtSecret)
	assert.False(t, cfg.InsecureSecret())
}
