package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-booking-client/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookingctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STALE_TIME", "")

	c := config.New()
	require.Equal(t, "http://localhost:8000/api/v1", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.Equal(t, time.Duration(0), c.GetStaleTime())
	require.Equal(t, 5*time.Minute, c.GetGCTime())
	require.Equal(t, config.BackendFile, c.GetStoreBackend())
	require.Equal(t, "@token", c.GetTokenKey())
	require.False(t, c.GetMetricsEnabled())
}

func TestLoad(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STORE_PATH", "")

	path := writeConfigFile(t, `
api_base_url: https://events.example.com/api/v1/
request_timeout: 3s
stale_time: 30s
store:
  backend: sqlite
  path: /tmp/creds.db
`)

	t.Run("file values override defaults", func(t *testing.T) {
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "https://events.example.com/api/v1", c.GetAPIBaseURL())
		require.Equal(t, 3*time.Second, c.GetRequestTimeout())
		require.Equal(t, 30*time.Second, c.GetStaleTime())
		require.Equal(t, config.BackendSQLite, c.GetStoreBackend())
		require.Equal(t, "/tmp/creds.db", c.GetStorePath())
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "7s")
		t.Setenv("STORE_BACKEND", "MEMORY")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, 7*time.Second, c.GetRequestTimeout())
		require.Equal(t, config.BackendMemory, c.GetStoreBackend())
	})

	t.Run("invalid duration falls back to default", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	})
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "store: [unterminated")
	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}
