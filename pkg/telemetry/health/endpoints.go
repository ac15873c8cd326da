package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler serves the full health report. It executes all enabled
// checks on each request and maps the aggregate status to an HTTP code:
// HEALTHY and DEGRADED respond 200, UNHEALTHY and CRITICAL respond 503.
// The report body is included either way.
func HealthHandler(m *Monitor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := m.ExecuteAllChecks(r.Context())

		code := http.StatusOK
		if report.Status == StatusUnhealthy || report.Status == StatusCritical {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(report)
	})
}

// ReadinessHandler reports whether the service should receive traffic.
// Only CRITICAL takes it out of rotation: a degraded or unhealthy
// service still serves, a critically failing one does not.
func ReadinessHandler(m *Monitor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := m.ServiceStatus()
		ready := status != StatusCritical

		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"ready":     ready,
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

// LivenessHandler answers 200 whenever the process can serve HTTP at
// all. It runs no checks; liveness only proves the process responds.
func LivenessHandler(m *Monitor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"alive":          true,
			"uptime_seconds": time.Since(m.startTime).Seconds(),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		})
	})
}
