package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfront/config"
)

func setRequired(t *testing.T) {
	t.Setenv("MARKET_BASE_URI", "http://market.test/api")
	t.Setenv("MARKET_CLIENT_ID", "3")
	t.Setenv("MARKET_CLIENT_SECRET", "client-secret")
	t.Setenv("MARKET_PASSWORD_CLIENT_ID", "4")
	t.Setenv("MARKET_PASSWORD_CLIENT_SECRET", "password-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	// shadow anything leaked into the process environment
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MARKET_SCOPES", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://market.test/api", cfg.MarketBaseURI)
	assert.Equal(t, "marketfront.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"purchase-product", "manage-products", "manage-account", "read-general"}, cfg.Scopes)
}

func TestLoadScopesOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("MARKET_SCOPES", "read-general purchase-product")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"read-general", "purchase-product"}, cfg.Scopes)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_SECRET", "")
	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadEnvFile(t *testing.T) {
	setRequired(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LISTEN_ADDR=:9090\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}
