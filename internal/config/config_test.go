package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "GIN_MODE", "API_BASE_PATH", "FRONTEND_URL", "SHUTDOWN_TIMEOUT",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"SQLITE_PATH", "MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "JWT_EXPIRE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW",
		"OPENAI_API_KEY", "OPENAI_MODEL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "/api", cfg.APIBasePath)
	assert.Equal(t, DriverMongo, cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Equal(t, "debug", cfg.GinMode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("API_BASE_PATH", "/v1")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("JWT_EXPIRE", "30d")
	t.Setenv("AUTH_RATE_WINDOW", "15m")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/v1", cfg.APIBasePath)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, "release", cfg.GinMode)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
db_driver: postgres
db_password: ${TASKBOARD_TEST_DB_PASSWORD}
jwt_secret: ${TASKBOARD_TEST_UNSET}
jwt_expire: 2h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TASKBOARD_TEST_DB_PASSWORD", "from-env")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment wins over the file
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "from-env", cfg.DBPassword)
	assert.Equal(t, "${TASKBOARD_TEST_UNSET}", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
}

func TestLoad_RejectsZeroRateWindow(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_RATE_WINDOW", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_RATE_WINDOW")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"non-positive expiry", func(c *Config) { c.JWTExpire = 0 }, true},
		{"zero rate window", func(c *Config) { c.AuthRateWindow = 0 }, true},
		{"negative rate window", func(c *Config) { c.AuthRateWindow = -time.Minute }, true},
		{"zero window with limiting disabled", func(c *Config) {
			c.AuthRateLimit = 0
			c.AuthRateWindow = 0
		}, false},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.JWTSecret = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	cfg := Defaults()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}
