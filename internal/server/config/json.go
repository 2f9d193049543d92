package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/flagx"
	"github.com/dmitrijs2005/studyvault/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept either a
// string such as "5m" or integer nanoseconds. Only keys present in the file
// override the current values.
type JsonConfig struct {
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`

	StorageDir     string `json:"storage_dir"`
	StorageBackend string `json:"storage_backend"`
	DatabaseDSN    string `json:"database_dsn"`

	BlobBackend    string `json:"blob_backend"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	LLMEndpoint string          `json:"llm_endpoint"`
	LLMAPIKey   string          `json:"llm_api_key"`
	LLMModel    string          `json:"llm_model"`
	LLMTimeout  *timex.Duration `json:"llm_timeout"`

	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionFlushInterval *timex.Duration `json:"session_flush_interval"`
	SessionSweepInterval *timex.Duration `json:"session_sweep_interval"`

	ExtractionTimeout *timex.Duration `json:"extraction_timeout"`
	ChunkSize         int             `json:"chunk_size"`
	MaxContextChunks  int             `json:"max_context_chunks"`

	DatasetPath string `json:"dataset_path"`
}

// parseJson loads the file named by -c / -config, if any, into config.
// A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v *timex.Duration) {
		if v != nil {
			*dst = v.Duration
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setStr(&config.Environment, c.Environment)
	setStr(&config.LogLevel, c.LogLevel)

	setStr(&config.StorageDir, c.StorageDir)
	setStr(&config.StorageBackend, c.StorageBackend)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)

	setStr(&config.BlobBackend, c.BlobBackend)
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setStr(&config.LLMEndpoint, c.LLMEndpoint)
	setStr(&config.LLMAPIKey, c.LLMAPIKey)
	setStr(&config.LLMModel, c.LLMModel)
	setDur(&config.LLMTimeout, c.LLMTimeout)

	setDur(&config.SessionTTL, c.SessionTTL)
	setDur(&config.SessionFlushInterval, c.SessionFlushInterval)
	setDur(&config.SessionSweepInterval, c.SessionSweepInterval)

	setDur(&config.ExtractionTimeout, c.ExtractionTimeout)
	setInt(&config.ChunkSize, c.ChunkSize)
	setInt(&config.MaxContextChunks, c.MaxContextChunks)

	setStr(&config.DatasetPath, c.DatasetPath)
}
