package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	configFile = ".helpctl/config.json"

	// EnvBaseURL overrides the configured help service URL.
	EnvBaseURL = "HELPCTL_URL"

	// DefaultBaseURL is used when nothing else names a service.
	DefaultBaseURL = "http://localhost:8000"
)

// Config is the project-local helpctl configuration.
type Config struct {
	BaseURL       string `json:"base_url,omitempty"`
	Timeout       string `json:"timeout,omitempty"` // Go duration, empty = no timeout
	RetryAttempts int    `json:"retry_attempts,omitempty"`
	CORSOrigin    string `json:"cors_origin,omitempty"`
}

// Keys lists the settable config keys in display order.
var Keys = []string{"base_url", "timeout", "retry_attempts", "cors_origin"}

// Load reads the config from disk
func Load(baseDir string) (*Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *Config) error {
	configPath := filepath.Join(baseDir, configFile)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return c.BaseURL, nil
	case "timeout":
		return c.Timeout, nil
	case "retry_attempts":
		return strconv.Itoa(c.RetryAttempts), nil
	case "cors_origin":
		return c.CORSOrigin, nil
	}
	return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
}

// Set validates and assigns a config key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "base_url":
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("base_url must start with http:// or https://")
		}
		c.BaseURL = strings.TrimRight(value, "/")
	case "timeout":
		prev := c.Timeout
		c.Timeout = value
		if _, err := c.TimeoutDuration(); err != nil {
			c.Timeout = prev
			return err
		}
	case "retry_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("retry_attempts must be a non-negative integer")
		}
		c.RetryAttempts = n
	case "cors_origin":
		c.CORSOrigin = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// SetValue loads the config, sets key and saves it.
func SetValue(baseDir, key, value string) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return Save(baseDir, cfg)
}

// ConfiguredBaseURL returns the service URL named by the environment or the
// project config, and where it came from ("env" or "config"). It returns
// empty strings when neither names one.
func ConfiguredBaseURL(baseDir string) (string, string) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		return strings.TrimRight(v, "/"), "env"
	}
	cfg, err := Load(baseDir)
	if err == nil && cfg.BaseURL != "" {
		return cfg.BaseURL, "config"
	}
	return "", ""
}
