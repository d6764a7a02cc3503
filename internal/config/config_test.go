package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BATCH_SIZE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 1024, cfg.StockCacheSize)
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.Equal(t, 0.0, cfg.StoreWritesPerSecond)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_USER", "admin")
	t.Setenv("UPLOAD_PASS", "secret")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("STORE_WRITES_PER_SECOND", "200")
	t.Setenv("CORS_ORIGIN", "https://etf.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UploadAuthEnabled())
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 200.0, cfg.StoreWritesPerSecond)
	assert.Equal(t, "https://etf.example.com", cfg.CORSOrigin)
}

func TestUploadAuthEnabled_NeedsBoth(t *testing.T) {
	assert.False(t, (&Config{UploadUser: "admin"}).UploadAuthEnabled())
	assert.False(t, (&Config{}).UploadAuthEnabled())
}
