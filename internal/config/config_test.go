package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:        "production",
		DBDriver:   "postgres",
		DBSSLMode:  "require",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBPassword: "secure-password",
		Port:       "8080",
		SessionKey: "domin8x-user",
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty SSL mode", func(c *Config) { c.DBSSLMode = "" }, true},
		{"disabled SSL mode", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"default secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = "sqlite"; c.SQLitePath = "x.db" }, true},
		{"weak db password", func(c *Config) { c.DBPassword = "password" }, true},
		{"otlp tracing", func(c *Config) { c.TracingEnabled = true; c.TracingExporter = "otlp"; c.TracingSampleRatio = 0.25 }, false},
		{"unknown span exporter", func(c *Config) { c.TracingEnabled = true; c.TracingExporter = "zipkin" }, true},
		{"sample ratio above one", func(c *Config) { c.TracingEnabled = true; c.TracingExporter = "stdout"; c.TracingSampleRatio = 2 }, true},
		{"exporter ignored when tracing off", func(c *Config) { c.TracingExporter = "zipkin" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateDevelopment(t *testing.T) {
	c := &Config{
		Env:        "development",
		DBDriver:   "sqlite",
		SQLitePath: ":memory:",
		JWTSecret:  "dev",
		Port:       "8375",
		SessionKey: "domin8x-user",
	}
	assert.NoError(t, c.Validate())

	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c.DBDriver = "sqlite"
	c.GenerationDelayMS = -1
	assert.Error(t, c.Validate())

	c.GenerationDelayMS = 0
	c.SiteImportDelayMS = -5
	assert.Error(t, c.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("GENERATION_DELAY_MS", "15")
	t.Setenv("LEGACY_SESSION_KEYS", "mirrorx-user, old-user ,domin8x-user")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "domin8x-user", c.SessionKey)
	assert.Equal(t, 15*time.Millisecond, c.GenerationDelay())
	assert.Equal(t, []string{"mirrorx-user", "old-user"}, c.LegacySessionKeyList())
	assert.Equal(t, 168*time.Hour, c.TokenTTL())
	assert.Equal(t, "@every 1m", c.ChallengeSweepSchedule)
	assert.Equal(t, 3*time.Second, c.SiteImportDelay())
}
