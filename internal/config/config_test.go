package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves into an empty temp dir so no config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(1), cfg.Store.MinConns)
	assert.Equal(t, "https://api.geoapify.com/v1/geocode/search", cfg.Geocode.BaseURL)
	assert.InDelta(t, 5.0, cfg.Geocode.RateLimit, 0.001)
	assert.Equal(t, 10*time.Second, cfg.Geocode.Timeout())
	assert.Equal(t, 3, cfg.Geocode.MaxAttempts)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: ./dev.db
geocode:
  lang: pt
server:
  port: 9090
  allowed_origins:
    - http://localhost:3000
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "./dev.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "pt", cfg.Geocode.Lang)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Geocode.MaxAttempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LOCATION_STORE_DRIVER", "postgres")
	t.Setenv("LOCATION_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadUnprefixedEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DATABASE_URL", "postgres://localhost/locations")
	t.Setenv("GEOAPIFY_API_KEY", "geo-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/locations", cfg.Store.DatabaseURL)
	assert.Equal(t, "geo-key", cfg.Geocode.APIKey)
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	chdirTemp(t)

	t.Setenv("DATABASE_URL", "postgres://localhost/legacy")
	t.Setenv("LOCATION_STORE_DATABASE_URL", "postgres://localhost/new")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/new", cfg.Store.DatabaseURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [driver"), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config that passes every mode.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Store.MaxConns = 10
	cfg.Store.MinConns = 1
	cfg.Geocode.APIKey = "geo-key"
	cfg.Geocode.RateLimit = 5
	cfg.Server.Port = 3000
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"store", "geocode", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateStore_MissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateStore_SQLiteDefaultsPath(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = ""

	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidateStore_ConnBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.MinConns = 20

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_conns")
}

func TestValidateStore_IgnoresGeocode(t *testing.T) {
	cfg := validDefaults()
	cfg.Geocode.APIKey = ""

	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateGeocode_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Geocode.APIKey = ""

	err := cfg.Validate("geocode")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "geocode.api_key is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_CollectsAllProblems(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "geocode.api_key is required")
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
