// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the graphmail tool.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultGraphBaseURL mirrors graph.DefaultBaseURL without importing it.
const defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// Config holds the complete application configuration.
type Config struct {
	// Provider selects the outbound backend: "graph", "ses", "stdout", or
	// empty for automatic selection.
	Provider string        `yaml:"provider"`
	Graph    GraphConfig   `yaml:"graph"`
	SES      SESConfig     `yaml:"ses"`
	Logging  LoggingConfig `yaml:"logging"`
}

// GraphConfig holds Microsoft Graph mailbox configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// TokenURL overrides the endpoint derived from TenantID.
	TokenURL string `yaml:"token_url"`
	ProxyURL string `yaml:"proxy_url"`
	Mailbox  string `yaml:"mailbox"`
	BaseURL  string `yaml:"base_url"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Sender          string `yaml:"sender"`
	MaxAttempts     int    `yaml:"max_attempts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// file cannot be read or parsed.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()
	cfg.Provider = strings.ToLower(cfg.Provider)

	return cfg, nil
}

// GraphConfigured reports whether the Graph credentials and mailbox are set.
// Either TenantID or an explicit TokenURL locates the token endpoint.
func (c *Config) GraphConfigured() bool {
	return (c.Graph.TenantID != "" || c.Graph.TokenURL != "") &&
		c.Graph.ClientID != "" &&
		c.Graph.ClientSecret != "" &&
		c.Graph.Mailbox != ""
}

// SESConfigured reports whether SES has a region and a sender.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != "" && c.SES.Sender != ""
}

func (c *Config) applyDefaults() {
	c.Graph.BaseURL = defaultGraphBaseURL
	c.SES.MaxAttempts = 1
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty variables override; unparsable numbers are ignored.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}

	setString(&c.Graph.TenantID, "GRAPH_TENANT_ID")
	setString(&c.Graph.ClientID, "GRAPH_CLIENT_ID")
	setString(&c.Graph.ClientSecret, "GRAPH_CLIENT_SECRET")
	setString(&c.Graph.TokenURL, "GRAPH_TOKEN_URL")
	setString(&c.Graph.ProxyURL, "GRAPH_PROXY_URL")
	setString(&c.Graph.Mailbox, "GRAPH_MAILBOX")
	setString(&c.Graph.BaseURL, "GRAPH_BASE_URL")
	if v := os.Getenv("GRAPH_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.Graph.RateLimit = rps
		}
	}

	setString(&c.SES.Region, "SES_REGION")
	setString(&c.SES.AccessKeyID, "SES_ACCESS_KEY_ID")
	setString(&c.SES.SecretAccessKey, "SES_SECRET_ACCESS_KEY")
	setString(&c.SES.Sender, "SES_SENDER")
	if v := os.Getenv("SES_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SES.MaxAttempts = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
