// Package config handles harvest runtime configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the knobs a harvest run needs. The core packages take these
// as plain parameters; this struct only exists at the CLI boundary.
type Config struct {
	BaseURL     string        `yaml:"base_url,omitempty"`
	PageSize    int           `yaml:"page_size,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	BaseDelay   time.Duration `yaml:"base_delay,omitempty"`
	Workers     int           `yaml:"workers,omitempty"`
	RateLimit   float64       `yaml:"rate_limit,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// Defaults mirror the bioRxiv client's built-in values.
func Defaults() *Config {
	return &Config{
		BaseURL:     "https://api.biorxiv.org/details/biorxiv",
		PageSize:    100,
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		Workers:     5,
		RateLimit:   5.0,
		Timeout:     30 * time.Second,
	}
}

// Load reads a YAML config file and applies environment overrides on top
// of the defaults. A missing file is not an error: the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAML decodes durations from strings like "250ms" and leaves
// fields absent from the document untouched.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL     string  `yaml:"base_url"`
		PageSize    int     `yaml:"page_size"`
		MaxAttempts int     `yaml:"max_attempts"`
		BaseDelay   string  `yaml:"base_delay"`
		Workers     int     `yaml:"workers"`
		RateLimit   float64 `yaml:"rate_limit"`
		Timeout     string  `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.BaseURL != "" {
		c.BaseURL = raw.BaseURL
	}
	if raw.PageSize != 0 {
		c.PageSize = raw.PageSize
	}
	if raw.MaxAttempts != 0 {
		c.MaxAttempts = raw.MaxAttempts
	}
	if raw.Workers != 0 {
		c.Workers = raw.Workers
	}
	if raw.RateLimit != 0 {
		c.RateLimit = raw.RateLimit
	}
	if raw.BaseDelay != "" {
		d, err := time.ParseDuration(raw.BaseDelay)
		if err != nil {
			return fmt.Errorf("parsing base_delay: %w", err)
		}
		c.BaseDelay = d
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// applyEnv overrides fields from PREPUB_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("PREPUB_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PREPUB_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageSize = n
		}
	}
	if v := os.Getenv("PREPUB_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv("PREPUB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// validate rejects configurations the planner and client cannot honor.
func (c *Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}
