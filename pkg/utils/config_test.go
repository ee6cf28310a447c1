package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "db", cfg.Catalog.Source)
	assert.Equal(t, 5000, cfg.Catalog.MaxFeatures)
	assert.Equal(t, 5, cfg.Catalog.DefaultK)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  source: csv
  csv_path: /tmp/movies.csv
  max_features: 300
poster:
  timeout: 2s
`), 0o600))

	t.Setenv("POPFLIX_CATALOG_MAX_FEATURES", "1200")
	t.Setenv("POPFLIX_SERVER_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Catalog.Source)
	assert.Equal(t, "/tmp/movies.csv", cfg.Catalog.CSVPath)
	assert.Equal(t, 1200, cfg.Catalog.MaxFeatures, "env beats file")
	assert.Equal(t, 2*time.Second, cfg.Poster.Timeout)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
}

func TestLoadRejectsBadSource(t *testing.T) {
	t.Setenv("POPFLIX_CATALOG_SOURCE", "s3")
	_, err := LoadFrom("")
	assert.ErrorContains(t, err, "catalog.source")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "catalog.max_features", envKey("POPFLIX_CATALOG_MAX_FEATURES"))
	assert.Equal(t, "server.addr", envKey("POPFLIX_SERVER_ADDR"))
	assert.Equal(t, "config", envKey("POPFLIX_CONFIG"))
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Catalog.MaxFeatures = 0
	cfg.Catalog.DefaultK = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "max_features")
	assert.ErrorContains(t, err, "default_k")
}

func TestValidateTrustedProxies(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "::1", "192.168.1.7"}
	assert.NoError(t, cfg.Validate())

	cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.internal"}
	assert.ErrorContains(t, cfg.Validate(), `"proxy.internal" is not an IP or CIDR`)
}
