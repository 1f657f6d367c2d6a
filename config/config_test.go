package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "UPLOADS_PATH", "PUBLIC_URL_PREFIX", "API_PREFIX",
		"MAX_UPLOAD_SIZE_MB", "ALLOWED_ORIGINS", "PROTECT_RESOURCES", "RECONCILE_ON_START", "LOG_SQL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "curriculum.db", cfg.DatabasePath)
	assert.True(t, filepath.IsAbs(cfg.UploadsPath))
	assert.Equal(t, DefaultUploadsSubDir, filepath.Base(cfg.UploadsPath))
	assert.Equal(t, "/storage/uploads", cfg.PublicURLPrefix)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.ProtectResources)
	assert.False(t, cfg.ReconcileOnStart)
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "9000")
	t.Setenv("UPLOADS_PATH", dir)
	t.Setenv("PUBLIC_URL_PREFIX", "files/")
	t.Setenv("API_PREFIX", "/")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PROTECT_RESOURCES", "true")
	t.Setenv("LOG_SQL", "not-a-bool")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, dir, cfg.UploadsPath)
	assert.Equal(t, "/files", cfg.PublicURLPrefix)
	assert.Equal(t, "", cfg.APIPrefix)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ProtectResources)
	assert.False(t, cfg.LogSQL)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "-1")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "ten")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
}
