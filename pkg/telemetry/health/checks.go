package health

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
)

// RegisterBuiltinChecks adds the standard process checks:
//
//   - memory_heap (critical): fails when heap usage exceeds the
//     configured percentage of heap obtained from the OS
//   - goroutines (non-critical): fails when the live goroutine count
//     exceeds the configured maximum
//   - uptime (informational): never fails; reports process uptime
func RegisterBuiltinChecks(m *Monitor, cfg config.HealthConfig) {
	m.AddCheck("memory_heap", memoryHeapCheck(cfg.HeapCriticalPercent), CheckConfig{
		Type:     "system",
		Critical: true,
		Enabled:  true,
	})

	m.AddCheck("goroutines", goroutineCheck(cfg.MaxGoroutines), CheckConfig{
		Type:     "system",
		Critical: false,
		Enabled:  true,
	})

	m.AddCheck("uptime", uptimeCheck(), CheckConfig{
		Type:     "informational",
		Critical: false,
		Enabled:  true,
	})
}

// memoryHeapCheck fails when heap usage crosses the threshold.
func memoryHeapCheck(criticalPercent float64) CheckFunc {
	return func(ctx context.Context) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		if mem.HeapSys == 0 {
			return nil
		}

		percent := float64(mem.HeapAlloc) / float64(mem.HeapSys) * 100
		if percent > criticalPercent {
			return fmt.Errorf("heap usage %.1f%% exceeds %.1f%%", percent, criticalPercent)
		}
		return nil
	}
}

// goroutineCheck fails when the goroutine count crosses the threshold.
func goroutineCheck(maxGoroutines int) CheckFunc {
	return func(ctx context.Context) error {
		if n := runtime.NumGoroutine(); n > maxGoroutines {
			return fmt.Errorf("goroutine count %d exceeds %d", n, maxGoroutines)
		}
		return nil
	}
}

// uptimeCheck never fails; the check exists so uptime appears in the
// per-check report with its own statistics.
func uptimeCheck() CheckFunc {
	return func(ctx context.Context) error {
		return nil
	}
}
