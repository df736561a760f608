// Package config provides configuration for the skald telemetry store.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults. Invalid configured values fall back to these rather than
// failing startup: telemetry must never block the embedding application.
const (
	DefaultRetentionDays     = 30
	DefaultMaxBytes          = 500_000_000
	DefaultFlushInterval     = 30 * time.Second
	DefaultMaxBufferedEvents = 1000
)

// Config holds the store configuration.
type Config struct {
	// DataDir is the base directory for store data.
	DataDir string `json:"data_dir" yaml:"data_dir" env:"SKALD_DATA_DIR"`

	// RetentionDays is the age-based eviction horizon for partitions.
	RetentionDays int `json:"retention_days" yaml:"retention_days" env:"SKALD_RETENTION_DAYS"`

	// MaxBytes is the size-based eviction budget across all partitions.
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" env:"SKALD_MAX_BYTES"`

	// FlushInterval is the periodic flush cadence.
	FlushInterval time.Duration `json:"flush_interval" yaml:"flush_interval" env:"SKALD_FLUSH_INTERVAL"`

	// MaxBufferedEvents is the buffer size that triggers an out-of-band flush.
	MaxBufferedEvents int `json:"max_buffered_events" yaml:"max_buffered_events" env:"SKALD_MAX_BUFFERED_EVENTS"`

	// Storage selects and configures the persistence backend.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// StorageConfig holds backend configuration.
type StorageConfig struct {
	// Type is the backend type: local, s3
	Type string `json:"type" yaml:"type" env:"SKALD_STORAGE_TYPE"`

	// Path is the local partition directory (for local type).
	Path string `json:"path" yaml:"path" env:"SKALD_STORAGE_PATH"`

	// S3 configuration (for s3 type).
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 backend configuration.
type S3Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket" yaml:"bucket" env:"SKALD_S3_BUCKET"`

	// Region is the AWS region.
	Region string `json:"region" yaml:"region" env:"SKALD_S3_REGION"`

	// Endpoint is the S3 endpoint (for S3-compatible storage).
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"SKALD_S3_ENDPOINT"`
}

// DefaultConfig returns the default configuration for a local store.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "./data/skald",
		RetentionDays:     DefaultRetentionDays,
		MaxBytes:          DefaultMaxBytes,
		FlushInterval:     DefaultFlushInterval,
		MaxBufferedEvents: DefaultMaxBufferedEvents,
		Storage: StorageConfig{
			Type: "local",
		},
	}
}

// Resolve fills derived paths based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/skald"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "partitions")
	}
}

// Sanitize replaces invalid tuning values with the documented defaults.
// Misconfiguration degrades to defaults, never to a startup failure.
func (c *Config) Sanitize() {
	if c.RetentionDays <= 0 {
		log.Printf("config: invalid retention_days %d, using default %d", c.RetentionDays, DefaultRetentionDays)
		c.RetentionDays = DefaultRetentionDays
	}
	if c.MaxBytes <= 0 {
		log.Printf("config: invalid max_bytes %d, using default %d", c.MaxBytes, int64(DefaultMaxBytes))
		c.MaxBytes = DefaultMaxBytes
	}
	if c.FlushInterval <= 0 {
		log.Printf("config: invalid flush_interval %s, using default %s", c.FlushInterval, DefaultFlushInterval)
		c.FlushInterval = DefaultFlushInterval
	}
	if c.MaxBufferedEvents <= 0 {
		log.Printf("config: invalid max_buffered_events %d, using default %d", c.MaxBufferedEvents, DefaultMaxBufferedEvents)
		c.MaxBufferedEvents = DefaultMaxBufferedEvents
	}
}

// Validate validates the backend selection. Backend configuration cannot
// fall back silently: there is no sane default bucket.
func (c *Config) Validate() error {
	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies SKALD_-prefixed environment overrides to cfg.
// A .env file in the working directory is honored when present.
func LoadFromEnv(cfg *Config) error {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories a local store needs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
