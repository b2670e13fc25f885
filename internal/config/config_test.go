package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("EMAIL_FROM", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.ServerPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 5*time.Second, cfg.RepositoryTimeout)
	assert.Equal(t, 10*time.Second, cfg.NotificationTimeout)
	assert.Equal(t, "mailer@example.com", cfg.EmailFrom)
	assert.False(t, cfg.ResetHideUnknownEmail)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("REPOSITORY_TIMEOUT", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RESET_HIDE_UNKNOWN_EMAIL", "true")
	t.Setenv("SMTP_SKIP_VERIFY", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, 3*time.Second, cfg.RepositoryTimeout)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.ResetHideUnknownEmail)
	assert.False(t, cfg.SMTPSkipVerify)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "JWT_SECRET environment variable is required")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{JWTSecret: "k", StoreDriver: StoreMemory, JWTExpiresIn: time.Hour}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory store", func(c *Config) {}, false},
		{"unknown store", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"mongo without uri", func(c *Config) { c.StoreDriver = StoreMongo }, true},
		{"mysql with dsn", func(c *Config) { c.StoreDriver = StoreMySQL; c.MySQLDSN = "dsn" }, false},
		{"non-positive ttl", func(c *Config) { c.JWTExpiresIn = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
