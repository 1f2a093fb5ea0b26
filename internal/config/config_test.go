package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MODEL_PATH", "CARBON_PRICE_RM", "GEOCODE_CACHE_TTL", "REDIS_DB", "IMAGERY_SERVICE_URL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "model/acd_model.json", cfg.ModelPath)
	assert.Equal(t, 50.0, cfg.CarbonPriceRM)
	assert.Equal(t, 24*time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Empty(t, cfg.ImageryServiceURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CARBON_PRICE_RM", "72.5")
	t.Setenv("GEOCODE_CACHE_TTL", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GO_ENV", "production")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 72.5, cfg.CarbonPriceRM)
	assert.Equal(t, 90*time.Minute, cfg.GeocodeCacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CARBON_PRICE_RM", "cheap")
	t.Setenv("IMAGERY_TIMEOUT", "soon")
	cfg := FromEnv()
	assert.Equal(t, 50.0, cfg.CarbonPriceRM)
	assert.Equal(t, 120*time.Second, cfg.ImageryTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MODEL_PATH=/srv/model.json\n"), 0o600))
	t.Setenv("MODEL_PATH", "")
	os.Unsetenv("MODEL_PATH")

	cfg, found := Load(path)
	assert.True(t, found)
	assert.Equal(t, "/srv/model.json", cfg.ModelPath)
}
