package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSQLServerEnv(t *testing.T) {
	t.Setenv("DB_HOST", "sql.example.com")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("DB_USER_NAME", "reader")
	t.Setenv("DB_PASSWORD", "p@ss;word")
}

func TestLoadDefaults(t *testing.T) {
	setSQLServerEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "sqlserver", cfg.DatabaseDriver)
	assert.Equal(t, 1433, cfg.DatabasePort)
	assert.Equal(t, "dbo", cfg.CatalogSchema())
	assert.Equal(t, 30*time.Second, cfg.DatabaseConnectionTimeout)
	assert.Equal(t, 6, cfg.FetchConcurrency)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadMissingPassword(t *testing.T) {
	setSQLServerEnv(t)
	t.Setenv("DB_PASSWORD", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabasePassword")
}

func TestLoadSQLiteNeedsNoCredentials(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "catalog.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "catalog.db", cfg.DataSourceName())
	assert.Equal(t, "", cfg.CatalogSchema())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setSQLServerEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadRejectsUnparsableValue(t *testing.T) {
	setSQLServerEnv(t)
	t.Setenv("FETCH_CONCURRENCY", "six")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind env")
}

func TestLoadOverridesDefaults(t *testing.T) {
	setSQLServerEnv(t)
	t.Setenv("HTTP_SERVER_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("DB_ENCRYPT", "false")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.DatabaseEncrypt)
	assert.Equal(t, 0.25, cfg.TracingSampleRatio)
}

func TestLoadDotEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("DB_DRIVER=sqlite\nDB_NAME=from-file.db\nFETCH_CONCURRENCY=2\n"), 0o600))
	t.Setenv("FETCH_CONCURRENCY", "3")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "")
	os.Unsetenv("DB_NAME")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DatabaseName)
	assert.Equal(t, 3, cfg.FetchConcurrency)
}

func TestSQLServerDataSourceName(t *testing.T) {
	setSQLServerEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	u, err := url.Parse(cfg.DataSourceName())
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql.example.com:1433", u.Host)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss;word", password)

	query := u.Query()
	assert.Equal(t, "catalog", query.Get("database"))
	assert.Equal(t, "true", query.Get("encrypt"))
	assert.Equal(t, "true", query.Get("TrustServerCertificate"))
	assert.Equal(t, "30", query.Get("connection timeout"))
}

func TestPostgresDataSourceName(t *testing.T) {
	cfg := Config{
		AppName:                   "fern-api",
		DatabaseDriver:            "postgres",
		DatabaseHost:              "db",
		DatabasePort:              5432,
		DatabaseName:              "catalog",
		DatabaseUserName:          "reader",
		DatabasePassword:          "secret",
		DatabaseConnectionTimeout: 5 * time.Second,
	}

	u, err := url.Parse(cfg.DataSourceName())
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "/catalog", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "5", u.Query().Get("connect_timeout"))

	cfg.DatabaseEncrypt = true
	u, err = url.Parse(cfg.DataSourceName())
	require.NoError(t, err)
	assert.Equal(t, "verify-full", u.Query().Get("sslmode"))
}
