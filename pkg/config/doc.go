// Package config provides YAML-backed configuration for the observability
// core: service identity, HTTP server, logging, metrics, tracing, health
// monitoring, rate limiting, the shared redis store and the dashboard.
//
// Configuration is loaded with LoadConfig or LoadConfigWithEnvOverrides,
// defaulted with ApplyDefaults and checked with Validate. All three are
// composed by the loaders; callers normally only need:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("obscore.yaml")
//
// A Watcher can hot-reload the file, letting operators retune rate-limit
// ceilings without restarting the process.
package config
