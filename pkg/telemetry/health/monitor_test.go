package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
)

func newTestMonitor() *Monitor {
	return NewMonitor(config.HealthConfig{
		CheckInterval: time.Minute,
		CheckTimeout:  time.Second,
	}, "test-service", "1.0.0", nil)
}

func failing(err error) CheckFunc {
	return func(ctx context.Context) error { return err }
}

func passing() CheckFunc {
	return func(ctx context.Context) error { return nil }
}

func TestCriticalCheckEscalatesToCritical(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("database", failing(errors.New("connection refused")), CheckConfig{
		Critical: true,
		Enabled:  true,
	})
	ctx := context.Background()

	wantByRun := []Status{StatusDegraded, StatusDegraded, StatusCritical, StatusCritical}
	for i, want := range wantByRun {
		status, err := m.ExecuteCheck(ctx, "database")
		if err != nil {
			t.Fatalf("ExecuteCheck() #%d error = %v", i+1, err)
		}
		if status != want {
			t.Errorf("ExecuteCheck() #%d status = %q, want %q", i+1, status, want)
		}
	}

	report := m.ExecuteAllChecks(ctx)
	if report.Status != StatusCritical {
		t.Errorf("service status = %q, want %q", report.Status, StatusCritical)
	}
}

func TestNonCriticalCheckCapsAtUnhealthy(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("cache", failing(errors.New("miss storm")), CheckConfig{
		Critical: false,
		Enabled:  true,
	})
	ctx := context.Background()

	var last Status
	for i := 0; i < 6; i++ {
		report := m.ExecuteAllChecks(ctx)
		last = report.Status
		if report.Status == StatusCritical {
			t.Fatalf("sweep #%d reached CRITICAL from a non-critical check", i+1)
		}
	}
	if last != StatusUnhealthy {
		t.Errorf("service status = %q, want %q", last, StatusUnhealthy)
	}
}

func TestSuccessResetsEscalation(t *testing.T) {
	m := newTestMonitor()
	var fail bool
	m.AddCheck("flaky", func(ctx context.Context) error {
		if fail {
			return errors.New("transient")
		}
		return nil
	}, CheckConfig{Critical: true, Enabled: true})
	ctx := context.Background()

	fail = true
	for i := 0; i < 2; i++ {
		if _, err := m.ExecuteCheck(ctx, "flaky"); err != nil {
			t.Fatalf("ExecuteCheck() error = %v", err)
		}
	}

	fail = false
	status, err := m.ExecuteCheck(ctx, "flaky")
	if err != nil {
		t.Fatalf("ExecuteCheck() error = %v", err)
	}
	if status != StatusHealthy {
		t.Fatalf("status after success = %q, want %q", status, StatusHealthy)
	}

	// The counter restarted: two more failures only reach DEGRADED.
	fail = true
	for i := 0; i < 2; i++ {
		status, err = m.ExecuteCheck(ctx, "flaky")
		if err != nil {
			t.Fatalf("ExecuteCheck() error = %v", err)
		}
	}
	if status != StatusDegraded {
		t.Errorf("status after reset and two failures = %q, want %q", status, StatusDegraded)
	}
}

func TestCheckTimeoutCountsAsFailure(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Minute):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, CheckConfig{Critical: false, Enabled: true, Timeout: 10 * time.Millisecond})
	ctx := context.Background()

	status, err := m.ExecuteCheck(ctx, "slow")
	if err != nil {
		t.Fatalf("ExecuteCheck() error = %v", err)
	}
	if status != StatusDegraded {
		t.Errorf("status after timeout = %q, want %q", status, StatusDegraded)
	}

	report := m.Report()
	if got := report.Checks["slow"].LastError; got != ErrCheckTimeout.Error() {
		t.Errorf("last error = %q, want %q", got, ErrCheckTimeout.Error())
	}
}

func TestServiceStatusIsMaxSeverity(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("healthy", passing(), CheckConfig{Enabled: true})
	m.AddCheck("flapping", failing(errors.New("one failure")), CheckConfig{Enabled: true})
	ctx := context.Background()

	report := m.ExecuteAllChecks(ctx)
	if report.Status != StatusDegraded {
		t.Errorf("service status = %q, want %q", report.Status, StatusDegraded)
	}
	if report.Summary.Healthy != 1 || report.Summary.Degraded != 1 {
		t.Errorf("summary = %+v, want 1 healthy and 1 degraded", report.Summary)
	}
}

func TestDisabledChecksAreSkipped(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("broken", failing(errors.New("down")), CheckConfig{Critical: true, Enabled: true})
	m.SetEnabled("broken", false)
	ctx := context.Background()

	report := m.ExecuteAllChecks(ctx)
	if report.Status != StatusHealthy {
		t.Errorf("service status = %q, want %q with the only check disabled", report.Status, StatusHealthy)
	}
	if report.Checks["broken"].TotalChecks != 0 {
		t.Error("disabled check was executed during a sweep")
	}
}

func TestExecuteUnknownCheck(t *testing.T) {
	m := newTestMonitor()
	if _, err := m.ExecuteCheck(context.Background(), "ghost"); !errors.Is(err, ErrUnknownCheck) {
		t.Errorf("ExecuteCheck() error = %v, want %v", err, ErrUnknownCheck)
	}
}

// recordingListener collects transition notifications.
type recordingListener struct {
	mu      sync.Mutex
	check   []string
	service []string
}

func (l *recordingListener) OnCheckStatusChanged(name string, old, new Status) {
	l.mu.Lock()
	l.check = append(l.check, name+":"+string(old)+"->"+string(new))
	l.mu.Unlock()
}

func (l *recordingListener) OnServiceStatusChanged(old, new Status) {
	l.mu.Lock()
	l.service = append(l.service, string(old)+"->"+string(new))
	l.mu.Unlock()
}

func TestListenersFireOnTransitionsOnly(t *testing.T) {
	m := newTestMonitor()
	lis := &recordingListener{}
	m.Subscribe(lis)
	m.AddCheck("database", failing(errors.New("down")), CheckConfig{Critical: true, Enabled: true})
	ctx := context.Background()

	// Sweep 1: HEALTHY->DEGRADED. Sweep 2: no check transition.
	// Sweep 3: DEGRADED->CRITICAL. Sweep 4: steady state.
	for i := 0; i < 4; i++ {
		m.ExecuteAllChecks(ctx)
	}

	lis.mu.Lock()
	defer lis.mu.Unlock()

	wantCheck := []string{
		"database:HEALTHY->DEGRADED",
		"database:DEGRADED->CRITICAL",
	}
	if len(lis.check) != len(wantCheck) {
		t.Fatalf("check notifications = %v, want %v", lis.check, wantCheck)
	}
	for i := range wantCheck {
		if lis.check[i] != wantCheck[i] {
			t.Errorf("check notification #%d = %q, want %q", i+1, lis.check[i], wantCheck[i])
		}
	}

	wantService := []string{"HEALTHY->DEGRADED", "DEGRADED->CRITICAL"}
	if len(lis.service) != len(wantService) {
		t.Fatalf("service notifications = %v, want %v", lis.service, wantService)
	}
}

func TestReAddingCheckResetsState(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("database", failing(errors.New("down")), CheckConfig{Critical: true, Enabled: true})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m.ExecuteCheck(ctx, "database")
	}

	m.AddCheck("database", passing(), CheckConfig{Critical: true, Enabled: true})
	report := m.Report()
	if got := report.Checks["database"].ConsecutiveFailures; got != 0 {
		t.Errorf("consecutive failures after re-add = %d, want 0", got)
	}
	if got := report.Checks["database"].Status; got != StatusHealthy {
		t.Errorf("status after re-add = %q, want %q", got, StatusHealthy)
	}
}

func TestHealthEndpointStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		critical bool
		failures int
		wantCode int
	}{
		{name: "healthy", failures: 0, wantCode: http.StatusOK},
		{name: "degraded", failures: 2, wantCode: http.StatusOK},
		{name: "unhealthy", failures: 3, wantCode: http.StatusServiceUnavailable},
		{name: "critical", critical: true, failures: 3, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMonitor()
			remaining := tt.failures
			m.AddCheck("database", func(ctx context.Context) error {
				if remaining > 0 {
					remaining--
					return errors.New("down")
				}
				return nil
			}, CheckConfig{Critical: tt.critical, Enabled: true})

			// Pre-run all but the last failure; the handler's own sweep
			// supplies the final one.
			for i := 0; i < tt.failures-1; i++ {
				m.ExecuteAllChecks(context.Background())
			}

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			HealthHandler(m).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("GET /health status = %d, want %d", rec.Code, tt.wantCode)
			}

			var report ServiceHealth
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("body is not a health report: %v", err)
			}
			if report.Service != "test-service" {
				t.Errorf("report service = %q, want %q", report.Service, "test-service")
			}
		})
	}
}

func TestReadinessOnlyFailsOnCritical(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("cache", failing(errors.New("down")), CheckConfig{Critical: false, Enabled: true})
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		m.ExecuteAllChecks(ctx)
	}

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	ReadinessHandler(m).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ready with UNHEALTHY service = %d, want %d", rec.Code, http.StatusOK)
	}

	m.AddCheck("database", failing(errors.New("down")), CheckConfig{Critical: true, Enabled: true})
	for i := 0; i < 4; i++ {
		m.ExecuteAllChecks(ctx)
	}

	rec = httptest.NewRecorder()
	ReadinessHandler(m).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /ready with CRITICAL service = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestLivenessAlwaysOK(t *testing.T) {
	m := newTestMonitor()
	m.AddCheck("database", failing(errors.New("down")), CheckConfig{Critical: true, Enabled: true})
	for i := 0; i < 4; i++ {
		m.ExecuteAllChecks(context.Background())
	}

	req := httptest.NewRequest(http.MethodGet, "/alive", nil)
	rec := httptest.NewRecorder()
	LivenessHandler(m).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /alive = %d, want %d even when critical", rec.Code, http.StatusOK)
	}
}

func TestBuiltinChecksRegister(t *testing.T) {
	m := newTestMonitor()
	RegisterBuiltinChecks(m, config.HealthConfig{
		HeapCriticalPercent: 99,
		MaxGoroutines:       100000,
	})

	if got := m.CheckCount(); got != 3 {
		t.Fatalf("CheckCount() = %d, want 3", got)
	}

	report := m.ExecuteAllChecks(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("service status with generous thresholds = %q, want %q", report.Status, StatusHealthy)
	}
}
