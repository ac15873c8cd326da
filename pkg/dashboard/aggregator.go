package dashboard

import (
	"runtime"
	"sync"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/health"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/metrics"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/tracing"
)

// Performance score deductions. The score starts at 100 and is reduced
// by health severity and memory pressure, clamped at zero.
const (
	scoreCritical  = 40
	scoreUnhealthy = 30
	scoreDegraded  = 15

	scoreMemoryCritical = 20
	scoreMemoryHigh     = 10

	memoryHighPercent     = 80.0
	memoryCriticalPercent = 90.0
)

// Overview is the composite service snapshot served by the dashboard.
type Overview struct {
	Service          string               `json:"service"`
	Version          string               `json:"version"`
	Timestamp        time.Time            `json:"timestamp"`
	PerformanceScore int                  `json:"performance_score"`
	Health           health.ServiceHealth `json:"health"`
	Metrics          MetricsSummary       `json:"metrics"`
	Tracing          TracingSummary       `json:"tracing"`
	System           SystemInfo           `json:"system"`
	Alerts           []Alert              `json:"alerts"`
}

// MetricsSummary condenses the registry for the composite view.
type MetricsSummary struct {
	Registered    int     `json:"registered_metrics"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// TracingSummary condenses the tracer for the composite view.
type TracingSummary struct {
	Service       string `json:"service"`
	FinishedSpans int    `json:"finished_spans"`
}

// SystemInfo reports host process resource usage.
type SystemInfo struct {
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64  `json:"heap_sys_bytes"`
	MemoryPercent  float64 `json:"memory_percent"`
	Goroutines     int     `json:"goroutines"`
	NumCPU         int     `json:"num_cpu"`
	GoVersion      string  `json:"go_version"`
}

// Alert flags a condition needing operator attention.
type Alert struct {
	Severity  string `json:"severity"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Aggregator composes health, metrics and tracing state into one
// Overview and caches it. Calls within the cache interval return the
// cached snapshot without recomputation, so a dashboard polling hard
// cannot amplify load on the subsystems it observes.
type Aggregator struct {
	cfg      config.DashboardConfig
	service  string
	version  string
	monitor  *health.Monitor
	registry *metrics.Registry
	tracer   *tracing.Tracer
	logger   *logging.Logger

	// sysinfo is swappable for tests
	sysinfo func() SystemInfo

	mu       sync.Mutex
	cached   Overview
	cachedAt time.Time
}

// NewAggregator wires an aggregator over the three telemetry
// subsystems. A nil logger falls back to a no-op logger.
func NewAggregator(cfg config.DashboardConfig, service, version string, monitor *health.Monitor, registry *metrics.Registry, tracer *tracing.Tracer, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.CacheInterval <= 0 {
		cfg.CacheInterval = config.DefaultCacheInterval
	}

	return &Aggregator{
		cfg:      cfg,
		service:  service,
		version:  version,
		monitor:  monitor,
		registry: registry,
		tracer:   tracer,
		logger:   logger,
		sysinfo:  collectSystemInfo,
	}
}

// Overview returns the composite snapshot, recomputing only when the
// cached one has expired.
func (a *Aggregator) Overview() Overview {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cachedAt.IsZero() && time.Since(a.cachedAt) < a.cfg.CacheInterval {
		return a.cached
	}

	a.cached = a.compose()
	a.cachedAt = time.Now()
	return a.cached
}

// System returns fresh process resource usage, never cached.
func (a *Aggregator) System() SystemInfo {
	return a.sysinfo()
}

// compose builds one Overview from current subsystem state.
func (a *Aggregator) compose() Overview {
	healthReport := a.monitor.Report()
	system := a.sysinfo()

	o := Overview{
		Service:   a.service,
		Version:   a.version,
		Timestamp: time.Now(),
		Health:    healthReport,
		Metrics: MetricsSummary{
			Registered:    a.registry.Len(),
			UptimeSeconds: time.Since(a.registry.StartTime()).Seconds(),
		},
		Tracing: TracingSummary{
			Service:       a.tracer.ServiceName(),
			FinishedSpans: a.tracer.FinishedCount(),
		},
		System: system,
		Alerts: []Alert{},
	}

	o.PerformanceScore = performanceScore(healthReport.Status, system.MemoryPercent)

	if healthReport.Status == health.StatusCritical {
		o.Alerts = append(o.Alerts, Alert{
			Severity:  "critical",
			Component: "health",
			Message:   "service health is CRITICAL",
		})
	}
	if system.MemoryPercent > memoryCriticalPercent {
		o.Alerts = append(o.Alerts, Alert{
			Severity:  "critical",
			Component: "memory",
			Message:   "heap usage above 90%",
		})
	}

	return o
}

// performanceScore derives the 0-100 score from health severity and
// memory pressure.
func performanceScore(status health.Status, memoryPercent float64) int {
	score := 100

	switch status {
	case health.StatusCritical:
		score -= scoreCritical
	case health.StatusUnhealthy:
		score -= scoreUnhealthy
	case health.StatusDegraded:
		score -= scoreDegraded
	}

	switch {
	case memoryPercent > memoryCriticalPercent:
		score -= scoreMemoryCritical
	case memoryPercent > memoryHighPercent:
		score -= scoreMemoryHigh
	}

	if score < 0 {
		score = 0
	}
	return score
}

// collectSystemInfo samples the live process.
func collectSystemInfo() SystemInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := SystemInfo{
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		Goroutines:     runtime.NumGoroutine(),
		NumCPU:         runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
	if mem.HeapSys > 0 {
		info.MemoryPercent = float64(mem.HeapAlloc) / float64(mem.HeapSys) * 100
	}
	return info
}
