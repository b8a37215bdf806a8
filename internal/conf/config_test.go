package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dixithak/FileInsights/internal/tracker/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, data.BackendMemory, cfg.Tracker.Backend)
	assert.Equal(t, data.DefaultTableNames(), cfg.Tracker.Tables)
	assert.Equal(t, 3, cfg.Tracker.Queue.MaxRetries)
	assert.Equal(t, time.Second, cfg.Tracker.Queue.PollInterval)
	assert.False(t, cfg.UsesRedis())
	assert.False(t, cfg.UsesDatabase())
}

func TestLoadConfig_TableEnv(t *testing.T) {
	t.Setenv("FILE_METADATA_LATEST", "LatestProd")
	t.Setenv("FILE_DELETED", "DeletedProd")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "LatestProd", cfg.Tracker.Tables.Latest)
	assert.Equal(t, "DeletedProd", cfg.Tracker.Tables.Deleted)
	assert.Equal(t, "FileMetadataHistory", cfg.Tracker.Tables.History)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
tracker:
  backend: sqlite
  object_store: s3
  queue:
    enabled: true
    poll_interval: 250ms
    max_retries: 5
database:
  path: /tmp/tracker.db
redis:
  master_addr: cache:6379
`), 0o644))

	t.Setenv("SERVER_GRPC_PORT", "9999")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9999, cfg.Server.GRPCPort)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, "/tmp/tracker.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Tracker.Queue.PollInterval)
	assert.Equal(t, 5, cfg.Tracker.Queue.MaxRetries)
	assert.Equal(t, "cache:6379", cfg.Redis.MasterAddr)
	assert.True(t, cfg.UsesRedis())
	assert.True(t, cfg.UsesDatabase())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("TRACKER_BACKEND", "dynamodb")
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
