package metrics

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// schedProbeDuration is the timer interval used to estimate scheduler
// latency. The measured slippage beyond this interval is reported as
// sched_latency_seconds.
const schedProbeDuration = 20 * time.Millisecond

// RuntimeCollector refreshes the built-in process series on a fixed
// schedule, independent of request traffic:
//
//   - memory_heap_used_bytes / memory_heap_total_bytes
//   - cpu_user_seconds_total / cpu_system_seconds_total
//   - process_uptime_seconds
//   - goroutines_count
//   - sched_latency_seconds (timer-fire slippage)
type RuntimeCollector struct {
	registry *Registry
	interval time.Duration
	logger   *logging.Logger

	heapUsed    *Gauge
	heapTotal   *Gauge
	uptime      *Gauge
	goroutines  *Gauge
	schedLat    *Gauge
	cpuUser     *Counter
	cpuSystem   *Counter

	mu         sync.Mutex
	lastUser   float64
	lastSystem float64

	cron *cron.Cron
}

// NewRuntimeCollector creates a runtime collector publishing into the
// given registry. It does not start collecting until Start is called.
func NewRuntimeCollector(registry *Registry, interval time.Duration, logger *logging.Logger) *RuntimeCollector {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &RuntimeCollector{
		registry: registry,
		interval: interval,
		logger:   logger,

		heapUsed:   registry.Gauge("memory_heap_used_bytes", "Heap bytes currently allocated", nil),
		heapTotal:  registry.Gauge("memory_heap_total_bytes", "Heap bytes obtained from the OS", nil),
		uptime:     registry.Gauge("process_uptime_seconds", "Seconds since process start", nil),
		goroutines: registry.Gauge("goroutines_count", "Number of live goroutines", nil),
		schedLat:   registry.Gauge("sched_latency_seconds", "Observed timer-fire slippage of the scheduler", nil),
		cpuUser:    registry.Counter("cpu_user_seconds_total", "Total user CPU time consumed", nil),
		cpuSystem:  registry.Counter("cpu_system_seconds_total", "Total system CPU time consumed", nil),
	}
}

// Start begins scheduled collection. An immediate first refresh runs
// before the schedule starts so the series are populated right away.
func (rc *RuntimeCollector) Start() error {
	if rc.cron != nil {
		return nil
	}

	rc.Refresh()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", rc.interval), rc.Refresh); err != nil {
		return fmt.Errorf("failed to schedule runtime collection: %w", err)
	}
	c.Start()
	rc.cron = c

	rc.logger.Debug("runtime collector started", "interval", rc.interval.String())
	return nil
}

// Stop halts scheduled collection.
func (rc *RuntimeCollector) Stop() {
	if rc.cron != nil {
		rc.cron.Stop()
		rc.cron = nil
	}
}

// Refresh collects one sample of every built-in series.
func (rc *RuntimeCollector) Refresh() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	rc.heapUsed.Set(float64(mem.HeapAlloc))
	rc.heapTotal.Set(float64(mem.HeapSys))

	rc.uptime.Set(time.Since(rc.registry.StartTime()).Seconds())
	rc.goroutines.Set(float64(runtime.NumGoroutine()))

	rc.collectCPU()
	rc.schedLat.Set(measureSchedLatency().Seconds())
}

// collectCPU reads process CPU totals and advances the counters by the
// delta since the previous collection.
func (rc *RuntimeCollector) collectCPU() {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		rc.logger.Warn("failed to read process CPU usage", "error", err.Error())
		return
	}

	user := timevalSeconds(ru.Utime)
	system := timevalSeconds(ru.Stime)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if delta := user - rc.lastUser; delta > 0 {
		_ = rc.cpuUser.Inc(delta)
	}
	if delta := system - rc.lastSystem; delta > 0 {
		_ = rc.cpuSystem.Inc(delta)
	}
	rc.lastUser = user
	rc.lastSystem = system
}

// timevalSeconds converts a syscall.Timeval to seconds.
func timevalSeconds(tv syscall.Timeval) float64 {
	return float64(tv.Sec) + float64(tv.Usec)/1e6
}

// measureSchedLatency arms a short timer and reports how far past its
// deadline it actually fired. Under a healthy scheduler this is close
// to zero; a saturated runtime stretches it.
func measureSchedLatency() time.Duration {
	start := time.Now()
	timer := time.NewTimer(schedProbeDuration)
	<-timer.C

	lag := time.Since(start) - schedProbeDuration
	if lag < 0 {
		lag = 0
	}
	return lag
}
