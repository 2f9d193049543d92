package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/studyvault/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-s string    storage root directory
//	-b string    record backend: fs | postgres
//	-d string    PostgreSQL DSN
//	-o string    blob backend: fs | s3
//	-u string    S3 root user
//	-p string    S3 root password
//	-k string    S3 bucket
//	-g string    S3 region
//	-e string    S3 base endpoint
//	-l string    LLM chat-completions endpoint
//	-m string    LLM model
//	-t duration  LLM request timeout
//	-x duration  text extraction timeout
//	-q string    Q&A dataset path
//	-v string    log level
//	-n string    environment name ("production" switches logs to JSON)
//
// The API key has no flag; it comes from GROQ_API_KEY, LLM_API_KEY or the
// JSON file.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-s", "-b", "-d", "-o", "-u", "-p", "-k", "-g", "-e",
		"-l", "-m", "-t", "-x", "-q", "-v", "-n",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.StorageDir, "s", config.StorageDir, "storage root directory")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "record backend (fs|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend (fs|s3)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "k", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LLMEndpoint, "l", config.LLMEndpoint, "LLM chat-completions endpoint")
	fs.StringVar(&config.LLMModel, "m", config.LLMModel, "LLM model")
	fs.DurationVar(&config.LLMTimeout, "t", config.LLMTimeout, "LLM request timeout")
	fs.DurationVar(&config.ExtractionTimeout, "x", config.ExtractionTimeout, "text extraction timeout")

	fs.StringVar(&config.DatasetPath, "q", config.DatasetPath, "Q&A dataset path")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.Environment, "n", config.Environment, "environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
