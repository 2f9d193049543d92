package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"environment":            "production",
		"storage_dir":            "/var/lib/studyvault",
		"storage_backend":        "postgres",
		"database_dsn":           "postgres://db/sv",
		"blob_backend":           "s3",
		"s3_bucket":              "bucket",
		"s3_region":              "eu-west-1",
		"llm_api_key":            "gsk_json",
		"llm_timeout":            "45s",
		"session_ttl":            "48h",
		"session_flush_interval": float64(time.Minute),
		"extraction_timeout":     "10s",
		"chunk_size":             500,
		"max_context_chunks":     5,
		"dataset_path":           "/etc/qa.json",
	})

	t.Run("loads from json", func(t *testing.T) {
		setArgs(t, "-config", pathFlag)

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "/var/lib/studyvault", cfg.StorageDir)
		assert.Equal(t, BackendPostgres, cfg.StorageBackend)
		assert.Equal(t, "postgres://db/sv", cfg.DatabaseDSN)
		assert.Equal(t, BackendS3, cfg.BlobBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "eu-west-1", cfg.S3Region)
		assert.Equal(t, "gsk_json", cfg.LLMAPIKey)
		assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
		assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
		assert.Equal(t, time.Minute, cfg.SessionFlushInterval)
		assert.Equal(t, time.Hour, cfg.SessionSweepInterval, "absent keys keep previous values")
		assert.Equal(t, 10*time.Second, cfg.ExtractionTimeout)
		assert.Equal(t, 500, cfg.ChunkSize)
		assert.Equal(t, 5, cfg.MaxContextChunks)
		assert.Equal(t, "/etc/qa.json", cfg.DatasetPath)
		assert.Equal(t, "llama-3.1-8b-instant", cfg.LLMModel)
	})

	t.Run("short flag", func(t *testing.T) {
		setArgs(t, "-c", pathFlag)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "/var/lib/studyvault", cfg.StorageDir)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		setArgs(t)

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseJson(cfg)

		assert.Equal(t, want, *cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		setArgs(t, "-config", bad)

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		setArgs(t, "-config", filepath.Join(dir, "missing.json"))

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("bad duration → panics", func(t *testing.T) {
		bad := writeTempJSON(t, dir, "baddur.json", map[string]any{"session_ttl": "forever"})
		setArgs(t, "-config", bad)

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
