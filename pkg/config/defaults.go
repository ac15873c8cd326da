package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Metrics defaults
	DefaultRuntimeInterval  = 10 * time.Second
	DefaultSampleBufferSize = 1000

	// Tracing defaults
	DefaultSampleRate       = 1.0
	DefaultMaxFinishedSpans = 1000

	// Health defaults
	DefaultCheckInterval       = 30 * time.Second
	DefaultCheckTimeout        = 5 * time.Second
	DefaultHeapCriticalPercent = 90.0
	DefaultMaxGoroutines       = 10000

	// Rate limit defaults
	DefaultMaxRequests = 100
	DefaultWindow      = 15 * time.Minute
	DefaultBurstLimit  = 10
	DefaultBurstWindow = time.Minute

	// Redis defaults
	DefaultRedisDialTimeout = 5 * time.Second

	// Dashboard defaults
	DefaultCacheInterval = 5 * time.Second
)

// DefaultHistogramBuckets are the bucket boundaries used for histograms
// created without explicit buckets, in seconds.
var DefaultHistogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean toggles are not defaulted; a zero Config is fully disabled.
func ApplyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "observability-core"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "dev"
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Metrics.RuntimeInterval == 0 {
		cfg.Metrics.RuntimeInterval = DefaultRuntimeInterval
	}
	if cfg.Metrics.SampleBufferSize == 0 {
		cfg.Metrics.SampleBufferSize = DefaultSampleBufferSize
	}
	if len(cfg.Metrics.DefaultBuckets) == 0 {
		cfg.Metrics.DefaultBuckets = DefaultHistogramBuckets
	}

	if cfg.Tracing.SampleRate == 0 {
		cfg.Tracing.SampleRate = DefaultSampleRate
	}
	if cfg.Tracing.MaxFinishedSpans == 0 {
		cfg.Tracing.MaxFinishedSpans = DefaultMaxFinishedSpans
	}

	if cfg.Health.CheckInterval == 0 {
		cfg.Health.CheckInterval = DefaultCheckInterval
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultCheckTimeout
	}
	if cfg.Health.HeapCriticalPercent == 0 {
		cfg.Health.HeapCriticalPercent = DefaultHeapCriticalPercent
	}
	if cfg.Health.MaxGoroutines == 0 {
		cfg.Health.MaxGoroutines = DefaultMaxGoroutines
	}

	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = DefaultMaxRequests
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultWindow
	}
	if cfg.RateLimit.BurstLimit == 0 {
		cfg.RateLimit.BurstLimit = DefaultBurstLimit
	}
	if cfg.RateLimit.BurstWindow == 0 {
		cfg.RateLimit.BurstWindow = DefaultBurstWindow
	}

	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}

	if cfg.Dashboard.CacheInterval == 0 {
		cfg.Dashboard.CacheInterval = DefaultCacheInterval
	}
}
