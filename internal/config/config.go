// Package config provides environment-driven configuration for the
// processor. Values are read once at startup; a .env file is loaded by the
// command entry point before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the processor needs to run. Required fields are
// checked by Validate; the rest fall back to defaults.
type Config struct {
	Port        int
	DatabaseURL string

	// Analysis capability (Gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Transcription capability (Whisper-compatible HTTP API)
	TranscribeURL    string
	TranscribeAPIKey string

	// Blob store for recordings
	AWSRegion string
	S3Bucket  string

	// Best-effort dashboard callback; empty disables it
	DashboardCallbackURL string

	// Worker tuning
	WorkerConcurrency int
	PollInterval      time.Duration

	// How long a claimed job may stay unacknowledged before another worker
	// can reclaim it. Must exceed the longest expected handler run.
	VisibilityTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 8080,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		TranscribeURL:        os.Getenv("TRANSCRIBE_URL"),
		TranscribeAPIKey:     os.Getenv("TRANSCRIBE_API_KEY"),
		AWSRegion:            envOr("AWS_REGION", "us-east-1"),
		S3Bucket:             os.Getenv("AWS_S3_BUCKET"),
		DashboardCallbackURL: os.Getenv("DASHBOARD_CALLBACK_URL"),
		WorkerConcurrency:    2,
		PollInterval:         time.Second,
		VisibilityTimeout:    10 * time.Minute,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	if conc := os.Getenv("WORKER_CONCURRENCY"); conc != "" {
		c, err := strconv.Atoi(conc)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_CONCURRENCY %q: %w", conc, err)
		}
		cfg.WorkerConcurrency = c
	}

	if poll := os.Getenv("QUEUE_POLL_INTERVAL"); poll != "" {
		d, err := time.ParseDuration(poll)
		if err != nil {
			return nil, fmt.Errorf("invalid QUEUE_POLL_INTERVAL %q: %w", poll, err)
		}
		cfg.PollInterval = d
	}

	if vis := os.Getenv("QUEUE_VISIBILITY_TIMEOUT"); vis != "" {
		d, err := time.ParseDuration(vis)
		if err != nil {
			return nil, fmt.Errorf("invalid QUEUE_VISIBILITY_TIMEOUT %q: %w", vis, err)
		}
		cfg.VisibilityTimeout = d
	}

	return cfg, nil
}

// Validate checks that the configuration can actually run the pipeline.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.TranscribeURL == "" {
		return fmt.Errorf("config error: TRANSCRIBE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("config error: worker concurrency must be positive")
	}
	if c.VisibilityTimeout <= 0 {
		return fmt.Errorf("config error: visibility timeout must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
