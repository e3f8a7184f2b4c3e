package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017/test", cfg.MongoURI())
	assert.Len(t, cfg.Indexes.Destinations, 6)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
http:
  listen: ":9000"
store:
  driver: neo4j
neo4j:
  uri: bolt://graph:7687
  batch_size: 50
ingest:
  parallel_destinations: 8
indexes:
  destinations: [baseline]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Listen)
	assert.Equal(t, DriverNeo4j, cfg.Store.Driver)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, 50, cfg.Neo4j.BatchSize)
	assert.Equal(t, 8, cfg.Ingest.ParallelDestinations)
	assert.Equal(t, []string{"baseline"}, cfg.Indexes.Destinations)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, 10000, cfg.Ingest.MaxParts)
}

func TestLoadConfigInvalidDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: postgres\n"), 0o600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":      "3010",
		"MONGOHOST": "db.internal",
		"MONGOPORT": "27018",
		"MONGODB":   "fathom",
		"REDISDB":   "5",
		"REDISHOST": "cache.internal",
	}
	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, ":3010", cfg.HTTP.Listen)
	assert.Equal(t, "mongodb://db.internal:27018/fathom", cfg.MongoURI())
	assert.Equal(t, 5, cfg.Redis.DB)
	assert.Equal(t, "cache.internal:6379", cfg.RedisAddr())
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == "MONGOPORT" {
			return "abc", true
		}
		return "", false
	})
	assert.Error(t, err)
}
