package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	cfg, err := Decode("")
	require.NoError(t, err)

	assert.Equal(t, "15m", cfg.Database.MaxIdleTime)
	assert.Equal(t, "5m", cfg.Cache.TTL)
	assert.Equal(t, 5000, cfg.Ingest.BatchSize)
	assert.Equal(t, 2, cfg.Ingest.MaxRetries)
	assert.True(t, cfg.Limiter.Enabled)
}

func TestDecode_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8080
  env: staging
database:
  dsn: postgres://bookrating@localhost/bookrating
ingest:
  batch_size: 100
cors:
  trusted_origins: ["http://localhost:3000"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("INGESTMAXRETRIES", "5")

	cfg, err := Decode(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Server.Env)
	assert.Equal(t, "postgres://bookrating@localhost/bookrating", cfg.Database.DSN)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, 5, cfg.Ingest.MaxRetries)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Cors.TrustedOrigins)
}

func TestDecode_MissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
