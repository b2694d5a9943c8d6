// Package config loads engine configuration from YAML with environment
// variable overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the graph store backend.
type StoreConfig struct {
	// Backend is one of memory, postgres or http.
	Backend string `yaml:"backend"`

	Postgres PostgresConfig `yaml:"postgres"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// PostgresConfig configures the postgres-backed store.
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// HTTPConfig configures the remote entity-service store.
type HTTPConfig struct {
	BaseURL     string `yaml:"base_url"`
	Secret      string `yaml:"secret"`
	ServiceName string `yaml:"service_name"`
}

// AnalysisConfig carries the request defaults the service applies when a
// caller leaves a field unset.
type AnalysisConfig struct {
	MaxDepth         int           `yaml:"max_depth"`
	MaxEntities      int           `yaml:"max_entities"`
	MaxRelationships int           `yaml:"max_relationships"`
	MinConfidence    float64       `yaml:"min_confidence"`
	Timeout          time.Duration `yaml:"timeout"`
}

// CacheConfig configures the analysis snapshot cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	MaxSize int           `yaml:"max_size"`
	TTL     time.Duration `yaml:"ttl"`
}

// EvidenceConfig configures compliance snapshot retention.
type EvidenceConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// AuditConfig configures the in-memory audit trail.
type AuditConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the root engine configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	Evidence EvidenceConfig `yaml:"evidence"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: "memory"},
		Analysis: AnalysisConfig{
			MaxDepth:         2,
			MaxEntities:      100,
			MaxRelationships: 500,
			MinConfidence:    0.3,
			Timeout:          30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 1000,
			TTL:     15 * time.Minute,
		},
		Evidence: EvidenceConfig{
			Prefix: "analyses",
			Region: "eu-west-1",
		},
		Audit:   AuditConfig{BufferSize: 10000},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a config file, layering it over the defaults and applying
// environment overrides last. An empty path loads defaults plus
// environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays NETWORKENGINE_* environment variables. Only the
// values that routinely differ per deployment are overridable.
func (c *Config) applyEnv() {
	if v := os.Getenv("NETWORKENGINE_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("NETWORKENGINE_DATABASE_URL"); v != "" {
		c.Store.Postgres.DatabaseURL = v
	}
	if v := os.Getenv("NETWORKENGINE_STORE_BASE_URL"); v != "" {
		c.Store.HTTP.BaseURL = v
	}
	if v := os.Getenv("NETWORKENGINE_STORE_SECRET"); v != "" {
		c.Store.HTTP.Secret = v
	}
	if v := os.Getenv("NETWORKENGINE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}
	if v := os.Getenv("NETWORKENGINE_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	if v := os.Getenv("NETWORKENGINE_EVIDENCE_BUCKET"); v != "" {
		c.Evidence.Bucket = v
		c.Evidence.Enabled = true
	}
	if v := os.Getenv("NETWORKENGINE_EVIDENCE_ENDPOINT"); v != "" {
		c.Evidence.Endpoint = v
	}
	if v := os.Getenv("NETWORKENGINE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for deployment mistakes before any
// component is wired from it.
func (c *Config) Validate() error {
	v := NewValidator("config")

	v.OneOf("store.backend", c.Store.Backend, []string{"memory", "postgres", "http"}).
		When(c.Store.Backend == "postgres", func(v *Validator) {
			v.Required("store.postgres.database_url", c.Store.Postgres.DatabaseURL)
		}).
		When(c.Store.Backend == "http", func(v *Validator) {
			v.Required("store.http.base_url", c.Store.HTTP.BaseURL)
			v.Required("store.http.secret", c.Store.HTTP.Secret)
		})

	v.RangeInt("analysis.max_depth", c.Analysis.MaxDepth, 1, 5).
		RangeInt("analysis.max_entities", c.Analysis.MaxEntities, 10, 500).
		RangeInt("analysis.max_relationships", c.Analysis.MaxRelationships, 20, 2000).
		RangeFloat("analysis.min_confidence", c.Analysis.MinConfidence, 0, 1).
		RequiredDuration("analysis.timeout", c.Analysis.Timeout)

	v.When(c.Cache.Enabled, func(v *Validator) {
		v.Positive("cache.max_size", c.Cache.MaxSize)
		v.RequiredDuration("cache.ttl", c.Cache.TTL)
	})

	v.When(c.Evidence.Enabled, func(v *Validator) {
		v.Required("evidence.bucket", c.Evidence.Bucket)
		v.Required("evidence.region", c.Evidence.Region)
	})

	v.Positive("audit.buffer_size", c.Audit.BufferSize)
	v.OneOf("logging.level", c.Logging.Level, []string{"debug", "info", "warn", "error"})

	return v.Validate()
}
