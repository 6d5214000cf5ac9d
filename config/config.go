// Package config loads the storefront configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the storefront runtime configuration.
type Config struct {
	ListenAddr string

	// Market API and the two OAuth2 client pairs registered with it.
	MarketBaseURI        string
	ClientID             string
	ClientSecret         string
	PasswordClientID     string
	PasswordClientSecret string
	RedirectURL          string
	Scopes               []string

	// SessionSecret signs the session cookies.
	SessionSecret string
	// RedisAddress enables the Redis-backed client-token cache; empty keeps
	// the in-memory store.
	RedisAddress  string
	RedisPassword string
	// DatabasePath is the sqlite file holding user token records.
	DatabasePath string
	LogLevel     string
}

// defaultScopes mirrors the scope list registered for the storefront client.
var defaultScopes = []string{"purchase-product", "manage-products", "manage-account", "read-general"}

// Load reads the configuration from the environment. A missing .env file is
// not an error; explicit environment variables win over .env entries.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ListenAddr:           envOr("LISTEN_ADDR", ":8080"),
		MarketBaseURI:        os.Getenv("MARKET_BASE_URI"),
		ClientID:             os.Getenv("MARKET_CLIENT_ID"),
		ClientSecret:         os.Getenv("MARKET_CLIENT_SECRET"),
		PasswordClientID:     os.Getenv("MARKET_PASSWORD_CLIENT_ID"),
		PasswordClientSecret: os.Getenv("MARKET_PASSWORD_CLIENT_SECRET"),
		RedirectURL:          os.Getenv("MARKET_REDIRECT_URL"),
		Scopes:               defaultScopes,
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		RedisAddress:         os.Getenv("REDIS_ADDRESS"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		DatabasePath:         envOr("DATABASE_PATH", "marketfront.db"),
		LogLevel:             envOr("LOG_LEVEL", "info"),
	}
	if scopes := os.Getenv("MARKET_SCOPES"); scopes != "" {
		cfg.Scopes = strings.Fields(scopes)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	missing := make([]string, 0, 4)
	if c.MarketBaseURI == "" {
		missing = append(missing, "MARKET_BASE_URI")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		missing = append(missing, "MARKET_CLIENT_ID/MARKET_CLIENT_SECRET")
	}
	if c.PasswordClientID == "" || c.PasswordClientSecret == "" {
		missing = append(missing, "MARKET_PASSWORD_CLIENT_ID/MARKET_PASSWORD_CLIENT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
