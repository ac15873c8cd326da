package config

import "time"

// Config is the root configuration for the observability core.
type Config struct {
	// Service identifies the hosting service in traces, health payloads
	// and dashboard snapshots.
	Service ServiceConfig `yaml:"service"`

	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the metric registry.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures the tracer.
	Tracing TracingConfig `yaml:"tracing"`

	// Health configures the health monitor.
	Health HealthConfig `yaml:"health"`

	// RateLimit configures the sliding-window rate limiter.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Redis configures the shared counting store. When Addr is empty the
	// rate limiter uses the in-process store, which limits per process
	// rather than cluster-wide.
	Redis RedisConfig `yaml:"redis"`

	// Dashboard configures the composite snapshot endpoint.
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServiceConfig identifies the service.
type ServiceConfig struct {
	// Name is the logical service name (e.g., "course-service").
	Name string `yaml:"name"`

	// Version is the service version reported by /health.
	Version string `yaml:"version"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind (e.g., "127.0.0.1:8080").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// RedactSecrets enables automatic secret redaction.
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig configures the metric registry.
type MetricsConfig struct {
	// Enabled toggles metric collection.
	Enabled bool `yaml:"enabled"`

	// RuntimeInterval is how often built-in process series are refreshed.
	RuntimeInterval time.Duration `yaml:"runtime_interval"`

	// SampleBufferSize caps the per-histogram rolling sample buffer used
	// for percentile estimation.
	SampleBufferSize int `yaml:"sample_buffer_size"`

	// DefaultBuckets are the histogram bucket boundaries used when a
	// histogram is created without explicit buckets.
	DefaultBuckets []float64 `yaml:"default_buckets"`
}

// TracingConfig configures the tracer.
type TracingConfig struct {
	// Enabled toggles span creation. When disabled every span is a no-op.
	Enabled bool `yaml:"enabled"`

	// SampleRate is the Bernoulli sampling probability in [0, 1].
	SampleRate float64 `yaml:"sample_rate"`

	// MaxFinishedSpans caps the ring buffer of finished spans retained
	// for introspection.
	MaxFinishedSpans int `yaml:"max_finished_spans"`

	// LogExport writes finished spans to the logger when true.
	LogExport bool `yaml:"log_export"`
}

// HealthConfig configures the health monitor.
type HealthConfig struct {
	// Enabled toggles the monitor's scheduled sweeps.
	Enabled bool `yaml:"enabled"`

	// CheckInterval is how often all enabled checks run on schedule.
	CheckInterval time.Duration `yaml:"check_interval"`

	// CheckTimeout is the default per-check timeout.
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// HeapCriticalPercent is the heap usage percentage at which the
	// built-in memory check fails.
	HeapCriticalPercent float64 `yaml:"heap_critical_percent"`

	// MaxGoroutines is the goroutine count at which the built-in
	// goroutine check fails.
	MaxGoroutines int `yaml:"max_goroutines"`
}

// RateLimitConfig configures the sliding-window rate limiter.
type RateLimitConfig struct {
	// Enabled toggles rate limiting. When disabled the middleware is a
	// pass-through.
	Enabled bool `yaml:"enabled"`

	// MaxRequests is the main window capacity.
	MaxRequests int `yaml:"max_requests"`

	// Window is the main sliding window duration.
	Window time.Duration `yaml:"window"`

	// BurstLimit is the burst window capacity. The burst window is
	// evaluated before the main window and denies independently of it.
	BurstLimit int `yaml:"burst_limit"`

	// BurstWindow is the burst window duration.
	BurstWindow time.Duration `yaml:"burst_window"`

	// Adaptive shrinks the main limit under heap pressure and elevated
	// error rates. The effective limit never drops below 10% of
	// MaxRequests.
	Adaptive bool `yaml:"adaptive"`
}

// RedisConfig configures the shared counting store.
type RedisConfig struct {
	// Addr is the redis host:port. Empty selects the in-process store.
	Addr string `yaml:"addr"`

	// Password authenticates against redis when set.
	Password string `yaml:"password"`

	// DB is the redis database index.
	DB int `yaml:"db"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DashboardConfig configures the composite snapshot endpoint.
type DashboardConfig struct {
	// Enabled toggles the dashboard endpoints.
	Enabled bool `yaml:"enabled"`

	// CacheInterval is how long a composed overview is served from cache.
	CacheInterval time.Duration `yaml:"cache_interval"`
}
