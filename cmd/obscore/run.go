package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/dashboard"
	"github.com/ayefimenko/sharklearning-sub001/pkg/limits/ratelimit"
	"github.com/ayefimenko/sharklearning-sub001/pkg/limits/store"
	"github.com/ayefimenko/sharklearning-sub001/pkg/server"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/health"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/metrics"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the observability core server",
	Long: `Start the observability core with the specified configuration.

The server listens on the configured address and serves metrics, health,
tracing and dashboard endpoints. All routed traffic passes through the
sliding-window rate limiter when it is enabled.

Examples:
  # Start with built-in defaults
  obscore run

  # Start with a custom config
  obscore run --config /etc/obscore/config.yaml

  # Override listen address
  obscore run --listen 0.0.0.0:8080

  # Validate config without starting the server
  obscore run --config config.yaml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		RedactSecrets: cfg.Logging.RedactSecrets,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Metric registry and runtime series
	registry := metrics.NewRegistry(cfg.Metrics, logger)
	collector := metrics.NewRuntimeCollector(registry, cfg.Metrics.RuntimeInterval, logger)
	if cfg.Metrics.Enabled {
		if err := collector.Start(); err != nil {
			return fmt.Errorf("failed to start runtime collector: %w", err)
		}
		defer collector.Stop()
	}

	// Tracer
	var exporters []tracing.Exporter
	if cfg.Tracing.LogExport {
		exporters = append(exporters, tracing.NewLogExporter(logger))
	}
	tracer := tracing.NewTracer(cfg.Tracing, cfg.Service.Name, logger, exporters...)

	// Health monitor with built-in process checks
	monitor := health.NewMonitor(cfg.Health, cfg.Service.Name, cfg.Service.Version, logger)
	health.RegisterBuiltinChecks(monitor, cfg.Health)
	if cfg.Health.Enabled {
		if err := monitor.Start(); err != nil {
			return fmt.Errorf("failed to start health monitor: %w", err)
		}
		defer monitor.Shutdown()
	}

	// Rate limiter over the counting store selected at startup
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		cs := newCountingStore(cfg, logger)
		defer cs.Close()

		var adaptive *ratelimit.AdaptiveController
		if cfg.RateLimit.Adaptive {
			adaptive = newAdaptiveController(registry)
		}
		limiter = ratelimit.NewLimiter(cfg.RateLimit, cs, adaptive, logger)
	}

	aggregator := dashboard.NewAggregator(cfg.Dashboard, cfg.Service.Name, cfg.Service.Version,
		monitor, registry, tracer, logger)

	// Reload the config file in place. Rate-limit ceilings apply to the
	// running limiter; listener and store settings require a restart.
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile,
			func(next *config.Config) {
				if limiter != nil && next.RateLimit.Enabled {
					limiter.ApplyConfig(next.RateLimit)
				}
				logger.Info("configuration reloaded; listener and store changes apply on restart",
					"path", cfgFile)
			},
			func(err error) {
				logger.Warn("configuration reload skipped", "error", err)
			})
		if err != nil {
			logger.Warn("config watcher disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	srv := server.NewServer(cfg.Server, server.Telemetry{
		Logger:     logger,
		Registry:   registry,
		Tracer:     tracer,
		Monitor:    monitor,
		Aggregator: aggregator,
		Limiter:    limiter,
	})

	logger.Info("starting server",
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
		"listen_address", cfg.Server.ListenAddress,
	)
	return srv.Start(context.Background())
}

// newCountingStore selects the counting store once at startup. A redis
// address selects the shared store; connection failure falls back to the
// in-process store so the service still starts with per-process limits.
func newCountingStore(cfg *config.Config, logger *logging.Logger) store.CountingStore {
	if cfg.Redis.Addr == "" {
		logger.Info("rate limiting with in-process counting store")
		return store.NewMemoryStore()
	}

	rs, err := store.NewRedisStore(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-process counting store",
			"addr", cfg.Redis.Addr,
			"error", err,
		)
		return store.NewMemoryStore()
	}

	logger.Info("rate limiting with redis counting store", "addr", cfg.Redis.Addr)
	return rs
}

// newAdaptiveController feeds the limiter live heap pressure and the
// service error rate. The counters are the same instances the HTTP
// middleware increments; the registry hands back existing metrics when
// name and labels match.
func newAdaptiveController(registry *metrics.Registry) *ratelimit.AdaptiveController {
	requests := registry.Counter("http_requests_total", "Total HTTP requests served", nil)
	errorsTotal := registry.Counter("http_request_errors_total", "HTTP requests answered with a 5xx status", nil)

	heapPercent := func() float64 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapSys == 0 {
			return 0
		}
		return float64(ms.HeapAlloc) / float64(ms.HeapSys) * 100
	}
	errorRate := func() float64 {
		total := requests.Value()
		if total == 0 {
			return 0
		}
		return errorsTotal.Value() / total
	}

	return ratelimit.NewAdaptiveController(heapPercent, errorRate)
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Obscore %s\n", Version)
	fmt.Printf("  service: %s@%s\n", cfg.Service.Name, cfg.Service.Version)
	fmt.Printf("  listen:  %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  metrics: %v  tracing: %v  health: %v  rate-limit: %v\n",
		cfg.Metrics.Enabled, cfg.Tracing.Enabled, cfg.Health.Enabled, cfg.RateLimit.Enabled)
}
