// Copyright 2025-2026 Meridian HQ

package gchat

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// Config holds the bridge configuration. Values come from a YAML file with
// GCHAT_* environment variables taking precedence.
type Config struct {
	// AtName is the bot's address prefix, e.g. "@release-bot". Inbound
	// message bodies starting with it have the prefix stripped before the
	// handler sees them.
	AtName string `yaml:"at_name" envconfig:"AT_NAME"`

	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE" validate:"required"`
	Project         string `yaml:"project" envconfig:"PROJECT" validate:"required"`
	Topic           string `yaml:"topic" envconfig:"TOPIC" validate:"required"`
	Subscription    string `yaml:"subscription" envconfig:"SUBSCRIPTION" validate:"required"`

	// PageSize overrides the member-listing page size.
	PageSize int `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"gte=0"`
	// MaxMessageLength overrides the outbound chunk length.
	MaxMessageLength int `yaml:"max_message_length" envconfig:"MAX_MESSAGE_LENGTH" validate:"gte=0"`
	// DedupCacheSize overrides the dedup cache capacity.
	DedupCacheSize int `yaml:"dedup_cache_size" envconfig:"DEDUP_CACHE_SIZE" validate:"gte=0"`

	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// LoadConfig reads the YAML config at path, applies GCHAT_* environment
// overrides, fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := envconfig.Process("gchat", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = DefaultMaxMessageLength
	}
	if c.DedupCacheSize == 0 {
		c.DedupCacheSize = DefaultDedupCapacity
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9120"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
