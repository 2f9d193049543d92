package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-s", "/srv", "-b", "postgres", "-d", "db", "-o", "s3",
			"-u", "user", "-p", "password", "-k", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-l", "http://llm/v1/chat/completions", "-m", "mixtral", "-t", "90s", "-x", "5s",
			"-q", "dataset.json", "-v", "debug", "-n", "production",
		},
			expected: &Config{
				Environment:       "production",
				LogLevel:          "debug",
				StorageDir:        "/srv",
				StorageBackend:    "postgres",
				DatabaseDSN:       "db",
				BlobBackend:       "s3",
				S3RootUser:        "user",
				S3RootPassword:    "password",
				S3Bucket:          "bucket",
				S3Region:          "us-west-1",
				S3BaseEndpoint:    "http://endpoint",
				LLMEndpoint:       "http://llm/v1/chat/completions",
				LLMModel:          "mixtral",
				LLMTimeout:        90 * time.Second,
				ExtractionTimeout: 5 * time.Second,
				DatasetPath:       "dataset.json",
			}},
		{name: "unrelated flags are ignored", args: []string{"-c", "cfg.json", "-test.v", "-s", "dir"},
			expected: &Config{StorageDir: "dir"}},
		{name: "bad duration", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
