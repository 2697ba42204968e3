// Package config loads the bot configuration from an HCL file and secrets
// from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
)

// Config represents the complete bot configuration
type Config struct {
	Server   *ServerSettings   `hcl:"server,block"`
	Delivery *DeliverySettings `hcl:"delivery,block"`
	Premium  *PremiumSettings  `hcl:"premium,block"`
}

// ServerSettings contains HTTP and bot identity settings
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	WebhookPath string `hcl:"webhook_path,optional"`
	BotName     string `hcl:"bot_name,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	Shards      int    `hcl:"shards,optional"`
}

// DeliverySettings controls retries of outgoing Bot API calls
type DeliverySettings struct {
	MaxAttempts int    `hcl:"max_attempts,optional"`
	Backoff     string `hcl:"backoff,optional"`
	Timeout     string `hcl:"timeout,optional"`
}

// PremiumSettings points at the premium username list
type PremiumSettings struct {
	File string `hcl:"file,optional"`
}

// Secrets are read from the environment, never from the config file.
type Secrets struct {
	BotToken      string `env:"PIG_BOT_TOKEN,required,notEmpty"`
	WebhookSecret string `env:"PIG_WEBHOOK_SECRET"`
}

// Default returns the default configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Delivery == nil {
		c.Delivery = &DeliverySettings{}
	}
	if c.Premium == nil {
		c.Premium = &PremiumSettings{}
	}

	if c.Server.Address == "" {
		c.Server.Address = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 32926
	}
	if c.Server.WebhookPath == "" {
		c.Server.WebhookPath = "/"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.Shards == 0 {
		c.Server.Shards = 32
	}

	if c.Delivery.MaxAttempts == 0 {
		c.Delivery.MaxAttempts = 3
	}
	if c.Delivery.Backoff == "" {
		c.Delivery.Backoff = "500ms"
	}
	if c.Delivery.Timeout == "" {
		c.Delivery.Timeout = "30s"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.WebhookPath, "/") {
		return fmt.Errorf("webhook path must start with /: %q", c.Server.WebhookPath)
	}
	if c.Server.Shards < 1 {
		return fmt.Errorf("shards must be positive: %d", c.Server.Shards)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Delivery.MaxAttempts < 1 {
		return fmt.Errorf("delivery: max_attempts must be positive")
	}
	if _, err := time.ParseDuration(c.Delivery.Backoff); err != nil {
		return fmt.Errorf("delivery: invalid backoff: %w", err)
	}
	timeout, err := time.ParseDuration(c.Delivery.Timeout)
	if err != nil {
		return fmt.Errorf("delivery: invalid timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("delivery: timeout must be positive")
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Backoff returns the pause between delivery attempts. Call Validate first.
func (c *Config) Backoff() time.Duration {
	d, _ := time.ParseDuration(c.Delivery.Backoff)
	return d
}

// DeliveryTimeout bounds the delivery of one update's events. Call Validate first.
func (c *Config) DeliveryTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Delivery.Timeout)
	return d
}

// LoadSecrets reads secrets from the environment after loading dotenv, if
// that file exists. Variables already set take precedence over the file.
func LoadSecrets(dotenv string) (Secrets, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Secrets{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
