package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
	Logging LogConfig     `yaml:"logging"`
}

// APIConfig holds the service credentials and connection settings.
type APIConfig struct {
	Key           string        `envconfig:"TINIFY_KEY" yaml:"key"`
	AppIdentifier string        `envconfig:"TINIFY_APP_IDENTIFIER" yaml:"app_identifier"`
	Proxy         string        `envconfig:"TINIFY_PROXY" yaml:"proxy"`
	Endpoint      string        `envconfig:"TINIFY_ENDPOINT" default:"https://api.tinify.com" yaml:"endpoint"`
	Timeout       time.Duration `envconfig:"TINIFY_TIMEOUT" default:"60s" yaml:"timeout"`
	RateLimit     float64       `envconfig:"TINIFY_RATE_LIMIT" default:"0" yaml:"rate_limit"`
}

// RetryConfig holds the wait between a failed attempt and its retry.
type RetryConfig struct {
	WaitMin time.Duration `envconfig:"TINIFY_RETRY_WAIT_MIN" default:"0s" yaml:"wait_min"`
	WaitMax time.Duration `envconfig:"TINIFY_RETRY_WAIT_MAX" default:"0s" yaml:"wait_max"`
}

// BreakerConfig holds circuit breaker settings. A zero threshold disables
// the breaker.
type BreakerConfig struct {
	Threshold uint32        `envconfig:"TINIFY_BREAKER_THRESHOLD" default:"0" yaml:"threshold"`
	Cooldown  time.Duration `envconfig:"TINIFY_BREAKER_COOLDOWN" default:"30s" yaml:"cooldown"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads a YAML file and then applies environment overrides.
// Variables that are unset leave the file's values in place.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	env, err := Load()
	if err != nil {
		return nil, err
	}
	merge(cfg, env)
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Endpoint: "https://api.tinify.com",
			Timeout:  60 * time.Second,
		},
		Breaker: BreakerConfig{
			Cooldown: 30 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// merge copies explicitly set environment values over file values.
func merge(dst, env *Config) {
	setString := func(d *string, name, v string) {
		if _, ok := os.LookupEnv(name); ok {
			*d = v
		}
	}
	setString(&dst.API.Key, "TINIFY_KEY", env.API.Key)
	setString(&dst.API.AppIdentifier, "TINIFY_APP_IDENTIFIER", env.API.AppIdentifier)
	setString(&dst.API.Proxy, "TINIFY_PROXY", env.API.Proxy)
	setString(&dst.API.Endpoint, "TINIFY_ENDPOINT", env.API.Endpoint)
	setString(&dst.Logging.Level, "LOG_LEVEL", env.Logging.Level)

	if _, ok := os.LookupEnv("TINIFY_TIMEOUT"); ok {
		dst.API.Timeout = env.API.Timeout
	}
	if _, ok := os.LookupEnv("TINIFY_RATE_LIMIT"); ok {
		dst.API.RateLimit = env.API.RateLimit
	}
	if _, ok := os.LookupEnv("TINIFY_RETRY_WAIT_MIN"); ok {
		dst.Retry.WaitMin = env.Retry.WaitMin
	}
	if _, ok := os.LookupEnv("TINIFY_RETRY_WAIT_MAX"); ok {
		dst.Retry.WaitMax = env.Retry.WaitMax
	}
	if _, ok := os.LookupEnv("TINIFY_BREAKER_THRESHOLD"); ok {
		dst.Breaker.Threshold = env.Breaker.Threshold
	}
	if _, ok := os.LookupEnv("TINIFY_BREAKER_COOLDOWN"); ok {
		dst.Breaker.Cooldown = env.Breaker.Cooldown
	}
	if _, ok := os.LookupEnv("LOG_DEV"); ok {
		dst.Logging.Development = env.Logging.Development
	}
}
