package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rate_limit.window").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if cfg.Server.ListenAddress == "" {
		add("server.listen_address", "must not be empty")
	}

	if cfg.Metrics.SampleBufferSize < 0 {
		add("metrics.sample_buffer_size", "must be non-negative")
	}
	for i := 1; i < len(cfg.Metrics.DefaultBuckets); i++ {
		if cfg.Metrics.DefaultBuckets[i] <= cfg.Metrics.DefaultBuckets[i-1] {
			add("metrics.default_buckets", "bucket boundaries must be strictly ascending")
			break
		}
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		add("tracing.sample_rate", "must be in [0, 1]")
	}
	if cfg.Tracing.MaxFinishedSpans < 0 {
		add("tracing.max_finished_spans", "must be non-negative")
	}

	if cfg.Health.CheckTimeout <= 0 {
		add("health.check_timeout", "must be positive")
	}
	if cfg.Health.HeapCriticalPercent <= 0 || cfg.Health.HeapCriticalPercent > 100 {
		add("health.heap_critical_percent", "must be in (0, 100]")
	}

	if cfg.RateLimit.MaxRequests <= 0 {
		add("rate_limit.max_requests", "must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		add("rate_limit.window", "must be positive")
	}
	if cfg.RateLimit.BurstLimit <= 0 {
		add("rate_limit.burst_limit", "must be positive")
	}
	if cfg.RateLimit.BurstWindow <= 0 {
		add("rate_limit.burst_window", "must be positive")
	}
	if cfg.RateLimit.BurstWindow > cfg.RateLimit.Window {
		add("rate_limit.burst_window", "must not exceed the main window")
	}

	if cfg.Dashboard.CacheInterval < 0 {
		add("dashboard.cache_interval", "must be non-negative")
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
