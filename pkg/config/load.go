package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// OBSCORE_SECTION_FIELD (e.g., OBSCORE_SERVER_LISTEN_ADDRESS) and always take
// precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Default returns a fully-defaulted configuration with every subsystem
// enabled. Used when no configuration file is provided.
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	cfg.Tracing.Enabled = true
	cfg.Health.Enabled = true
	cfg.RateLimit.Enabled = true
	cfg.Dashboard.Enabled = true
	cfg.Logging.RedactSecrets = true
	ApplyDefaults(cfg)
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("OBSCORE_SERVICE_NAME"); val != "" {
		cfg.Service.Name = val
	}
	if val := os.Getenv("OBSCORE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("OBSCORE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("OBSCORE_TRACING_SAMPLE_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRate = f
		}
	}
	if val := os.Getenv("OBSCORE_RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxRequests = n
		}
	}
	if val := os.Getenv("OBSCORE_RATE_LIMIT_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if val := os.Getenv("OBSCORE_REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("OBSCORE_REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
}
