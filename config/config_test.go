package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET", "")
	t.Setenv("ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIBase)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Production())
	assert.NotEmpty(t, cfg.Secret) // dev fallback
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("SECRET", "")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("API_URL", "/api/v2")
	t.Setenv("SECRET", "prod-secret")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v2", cfg.APIBase)
	assert.True(t, cfg.Production())
	assert.Equal(t, "prod-secret", cfg.Secret)
}
