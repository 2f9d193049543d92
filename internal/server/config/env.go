package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/flagx"
	"github.com/joho/godotenv"
)

// defaultEnvFile is loaded when present and no -env-file flag is given.
const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (the -env-file flag, or ./.env if it exists)
// into the process environment and then overlays recognised variables onto
// config. Variables already set in the environment win over the file.
//
// An explicitly requested env file that cannot be read panics, like an
// unreadable JSON config does.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if _, err := os.Stat(defaultEnvFile); err == nil {
		_ = godotenv.Load(defaultEnvFile)
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	str("ENVIRONMENT", &config.Environment)
	str("LOG_LEVEL", &config.LogLevel)

	str("STORAGE_DIR", &config.StorageDir)
	str("STORAGE_BACKEND", &config.StorageBackend)
	str("DATABASE_DSN", &config.DatabaseDSN)

	str("BLOB_BACKEND", &config.BlobBackend)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	str("LLM_ENDPOINT", &config.LLMEndpoint)
	str("GROQ_API_KEY", &config.LLMAPIKey)
	str("LLM_API_KEY", &config.LLMAPIKey)
	str("LLM_MODEL", &config.LLMModel)
	dur("LLM_TIMEOUT", &config.LLMTimeout)

	dur("SESSION_TTL", &config.SessionTTL)
	dur("SESSION_FLUSH_INTERVAL", &config.SessionFlushInterval)
	dur("SESSION_SWEEP_INTERVAL", &config.SessionSweepInterval)

	dur("EXTRACTION_TIMEOUT", &config.ExtractionTimeout)
	num("CHUNK_SIZE", &config.ChunkSize)
	num("MAX_CONTEXT_CHUNKS", &config.MaxContextChunks)

	str("DATASET_PATH", &config.DatasetPath)
}
