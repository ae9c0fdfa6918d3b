package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
	ProviderStub     = "stub"
)

// Config holds all configuration for the signal classifier.
type Config struct {
	// Model provider
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`

	// Request policy
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	PromptTimestamp bool          `yaml:"prompt_timestamp"`

	// Server
	Port          string `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	MaxImageBytes int64  `yaml:"max_image_bytes"`

	// History database path; empty disables history.
	HistoryDB string `yaml:"history_db"`

	// Answer returned by the stub provider.
	StubResponse string `yaml:"stub_response"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:       ProviderGemini,
		RequestTimeout: 60 * time.Second,
		MaxRetries:     1,
		RetryBackoff:   500 * time.Millisecond,
		Port:           "8090",
		GinMode:        "release",
		MaxImageBytes:  10 << 20,
		HistoryDB:      "classifications.db",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads the optional YAML file at path and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Provider = getEnv("MODEL_PROVIDER", c.Provider)
	c.Model = getEnv("MODEL_NAME", c.Model)
	c.BaseURL = getEnv("MODEL_BASE_URL", c.BaseURL)
	c.RequestTimeout = getDurationEnv("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxRetries = getIntEnv("MAX_RETRIES", c.MaxRetries)
	c.RetryBackoff = getDurationEnv("RETRY_BACKOFF", c.RetryBackoff)
	c.PromptTimestamp = getBoolEnv("PROMPT_TIMESTAMP", c.PromptTimestamp)
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.MaxImageBytes = int64(getIntEnv("MAX_IMAGE_BYTES", int(c.MaxImageBytes)))
	c.HistoryDB = getEnv("HISTORY_DB", c.HistoryDB)
	c.StubResponse = getEnv("STUB_RESPONSE", c.StubResponse)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	// Generic key first, then the provider's conventional variable.
	c.APIKey = getEnv("MODEL_API_KEY", c.APIKey)
	if c.APIKey == "" {
		switch strings.ToLower(c.Provider) {
		case ProviderGemini:
			c.APIKey = os.Getenv("GOOGLE_API_KEY")
		case ProviderDeepSeek:
			c.APIKey = os.Getenv("DEEPSEEK_API_KEY")
		}
	}
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.APIKey = strings.TrimSpace(c.APIKey)
	if strings.EqualFold(c.HistoryDB, "off") {
		c.HistoryDB = ""
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxRetries > 1 {
		c.MaxRetries = 1
	}
}

// Validate rejects settings the service cannot start with.
// A missing API key is not rejected: it may be supplied per request.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderDeepSeek, ProviderStub:
	default:
		return fmt.Errorf("unknown model provider %q", c.Provider)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("max image bytes must be positive")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.GinMode)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// HistoryEnabled reports whether classification attempts are persisted.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDB != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
