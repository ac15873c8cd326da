package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// consecutiveFailureThreshold is the escalation boundary: at this many
// consecutive failures a check escalates from DEGRADED to UNHEALTHY, or
// to CRITICAL when the check is marked critical.
const consecutiveFailureThreshold = 3

var (
	// ErrCheckTimeout is the failure recorded when a check exceeds its
	// timeout. A timeout is treated identically to a returned error.
	ErrCheckTimeout = errors.New("health check timed out")

	// ErrUnknownCheck is returned when executing a check that was never
	// registered.
	ErrUnknownCheck = errors.New("unknown health check")
)

// CheckFunc performs one health check. It returns nil when the component
// is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckConfig configures a registered check.
type CheckConfig struct {
	// Type classifies the check (e.g., "system", "dependency",
	// "informational").
	Type string

	// Critical checks can escalate the service status to CRITICAL.
	Critical bool

	// Timeout bounds a single execution. Zero uses the monitor default.
	Timeout time.Duration

	// Enabled checks run during sweeps. Disabled checks keep their
	// registration and statistics but are skipped.
	Enabled bool
}

// CheckState is a snapshot of one check's escalation state.
type CheckState struct {
	Name                string        `json:"name"`
	Type                string        `json:"type"`
	Critical            bool          `json:"critical"`
	Enabled             bool          `json:"enabled"`
	Status              Status        `json:"status"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	TotalChecks         int64         `json:"total_checks"`
	TotalFailures       int64         `json:"total_failures"`
	LastError           string        `json:"last_error,omitempty"`
	LastDuration        time.Duration `json:"last_duration_ms"`
	LastChecked         time.Time     `json:"last_checked"`
}

// ServiceHealth is the aggregated service-level health report.
type ServiceHealth struct {
	Service   string                `json:"service"`
	Version   string                `json:"version"`
	Status    Status                `json:"status"`
	Uptime    float64               `json:"uptime_seconds"`
	Timestamp time.Time             `json:"timestamp"`
	Checks    map[string]CheckState `json:"checks"`
	Summary   Summary               `json:"summary"`
}

// Summary counts checks per resulting status.
type Summary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Degraded  int `json:"degraded"`
	Unhealthy int `json:"unhealthy"`
	Critical  int `json:"critical"`
}

// StatusListener receives transition notifications. Implementations are
// called synchronously after a sweep; they must not block for long and
// must not call back into the Monitor.
type StatusListener interface {
	// OnCheckStatusChanged fires when an individual check's status
	// changes.
	OnCheckStatusChanged(name string, oldStatus, newStatus Status)

	// OnServiceStatusChanged fires when the aggregate status changes.
	OnServiceStatusChanged(oldStatus, newStatus Status)
}

// check is the registered check plus its mutable escalation state.
type check struct {
	name string
	fn   CheckFunc
	cfg  CheckConfig

	consecutiveFailures int
	totalChecks         int64
	totalFailures       int64
	lastStatus          Status
	lastError           string
	lastDuration        time.Duration
	lastChecked         time.Time
}

// Monitor holds named health checks, runs them on demand or on a fixed
// schedule, and aggregates their results into one service-level status.
//
// Escalation: a success resets a check to HEALTHY; a failure increments
// its consecutive-failure count. Below three consecutive failures the
// check is DEGRADED; from three onward it is CRITICAL when marked
// critical and UNHEALTHY otherwise. The service status is the maximum
// severity across checks; only critical checks can raise it to CRITICAL.
type Monitor struct {
	cfg     config.HealthConfig
	service string
	version string
	logger  *logging.Logger

	mu            sync.Mutex
	checks        map[string]*check
	serviceStatus Status
	listeners     []StatusListener

	cron      *cron.Cron
	startTime time.Time
}

// NewMonitor creates a health monitor for the named service.
// A nil logger falls back to a no-op logger.
func NewMonitor(cfg config.HealthConfig, service, version string, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = config.DefaultCheckTimeout
	}

	return &Monitor{
		cfg:           cfg,
		service:       service,
		version:       version,
		logger:        logger,
		checks:        make(map[string]*check),
		serviceStatus: StatusHealthy,
		startTime:     time.Now(),
	}
}

// AddCheck registers a named check. Re-registering a name replaces the
// check function and configuration but resets its escalation state.
func (m *Monitor) AddCheck(name string, fn CheckFunc, cfg CheckConfig) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = m.cfg.CheckTimeout
	}
	if cfg.Type == "" {
		cfg.Type = "custom"
	}

	m.mu.Lock()
	m.checks[name] = &check{
		name:       name,
		fn:         fn,
		cfg:        cfg,
		lastStatus: StatusHealthy,
	}
	m.mu.Unlock()
}

// RemoveCheck unregisters a named check.
func (m *Monitor) RemoveCheck(name string) {
	m.mu.Lock()
	delete(m.checks, name)
	m.mu.Unlock()
}

// SetEnabled enables or disables a check without losing its state.
func (m *Monitor) SetEnabled(name string, enabled bool) {
	m.mu.Lock()
	if c, ok := m.checks[name]; ok {
		c.cfg.Enabled = enabled
	}
	m.mu.Unlock()
}

// Subscribe registers a transition listener.
func (m *Monitor) Subscribe(l StatusListener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// ExecuteCheck runs one named check, applies the escalation rule and
// returns the check's new status.
func (m *Monitor) ExecuteCheck(ctx context.Context, name string) (Status, error) {
	m.mu.Lock()
	c, ok := m.checks[name]
	m.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCheck, name)
	}

	result := m.runCheck(ctx, c)
	transition := m.applyResult(c, result)
	m.notify([]checkTransition{transition}, "", "")
	return transition.newStatus, nil
}

// checkResult is one check execution outcome.
type checkResult struct {
	err      error
	duration time.Duration
}

// runCheck races the check function against its timeout. Whichever
// settles first wins; a timeout is treated identically to an error. The
// slow check's eventual result is discarded, not cancelled — it may
// still run to completion in the background.
func (m *Monitor) runCheck(ctx context.Context, c *check) checkResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.fn(checkCtx)
	}()

	select {
	case err := <-errCh:
		return checkResult{err: err, duration: time.Since(start)}
	case <-checkCtx.Done():
		return checkResult{err: ErrCheckTimeout, duration: time.Since(start)}
	}
}

// checkTransition captures an individual check's status change.
type checkTransition struct {
	name      string
	oldStatus Status
	newStatus Status
}

// applyResult updates a check's escalation state from one execution.
func (m *Monitor) applyResult(c *check, result checkResult) checkTransition {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := c.lastStatus
	c.totalChecks++
	c.lastDuration = result.duration
	c.lastChecked = time.Now()

	if result.err == nil {
		c.consecutiveFailures = 0
		c.lastStatus = StatusHealthy
		c.lastError = ""
	} else {
		c.consecutiveFailures++
		c.totalFailures++
		c.lastError = result.err.Error()

		switch {
		case c.consecutiveFailures < consecutiveFailureThreshold:
			c.lastStatus = StatusDegraded
		case c.cfg.Critical:
			c.lastStatus = StatusCritical
		default:
			c.lastStatus = StatusUnhealthy
		}

		m.logger.Warn("health check failed",
			"check", c.name,
			"status", string(c.lastStatus),
			"consecutive_failures", c.consecutiveFailures,
			"error", c.lastError)
	}

	return checkTransition{name: c.name, oldStatus: old, newStatus: c.lastStatus}
}

// ExecuteAllChecks runs every enabled check concurrently, updates each
// check's escalation state, recomputes the aggregate status and emits
// change notifications for checks and the service level.
func (m *Monitor) ExecuteAllChecks(ctx context.Context) ServiceHealth {
	m.mu.Lock()
	enabled := make([]*check, 0, len(m.checks))
	for _, c := range m.checks {
		if c.cfg.Enabled {
			enabled = append(enabled, c)
		}
	}
	oldService := m.serviceStatus
	m.mu.Unlock()

	results := make([]checkResult, len(enabled))
	var wg sync.WaitGroup
	for i, c := range enabled {
		wg.Add(1)
		go func(i int, c *check) {
			defer wg.Done()
			results[i] = m.runCheck(ctx, c)
		}(i, c)
	}
	wg.Wait()

	transitions := make([]checkTransition, 0, len(enabled))
	for i, c := range enabled {
		transitions = append(transitions, m.applyResult(c, results[i]))
	}

	report := m.buildReport()

	m.mu.Lock()
	m.serviceStatus = report.Status
	m.mu.Unlock()

	m.notify(transitions, oldService, report.Status)
	return report
}

// Report returns the current aggregated state without executing checks.
func (m *Monitor) Report() ServiceHealth {
	return m.buildReport()
}

// buildReport snapshots check states and aggregates the service status.
func (m *Monitor) buildReport() ServiceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := ServiceHealth{
		Service:   m.service,
		Version:   m.version,
		Status:    StatusHealthy,
		Uptime:    time.Since(m.startTime).Seconds(),
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckState, len(m.checks)),
	}

	for name, c := range m.checks {
		state := CheckState{
			Name:                c.name,
			Type:                c.cfg.Type,
			Critical:            c.cfg.Critical,
			Enabled:             c.cfg.Enabled,
			Status:              c.lastStatus,
			ConsecutiveFailures: c.consecutiveFailures,
			TotalChecks:         c.totalChecks,
			TotalFailures:       c.totalFailures,
			LastError:           c.lastError,
			LastDuration:        c.lastDuration,
			LastChecked:         c.lastChecked,
		}
		report.Checks[name] = state

		if !c.cfg.Enabled {
			continue
		}

		report.Summary.Total++
		switch c.lastStatus {
		case StatusHealthy:
			report.Summary.Healthy++
		case StatusDegraded:
			report.Summary.Degraded++
		case StatusUnhealthy:
			report.Summary.Unhealthy++
		case StatusCritical:
			report.Summary.Critical++
		}

		report.Status = maxStatus(report.Status, c.lastStatus)
	}

	return report
}

// notify delivers transition notifications outside the monitor lock.
// Passing empty service statuses skips the service-level notification.
func (m *Monitor) notify(transitions []checkTransition, oldService, newService Status) {
	m.mu.Lock()
	listeners := make([]StatusListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if len(listeners) == 0 {
		return
	}

	for _, tr := range transitions {
		if tr.oldStatus == tr.newStatus {
			continue
		}
		for _, l := range listeners {
			l.OnCheckStatusChanged(tr.name, tr.oldStatus, tr.newStatus)
		}
	}

	if oldService != "" && newService != "" && oldService != newService {
		for _, l := range listeners {
			l.OnServiceStatusChanged(oldService, newService)
		}
	}
}

// Start begins scheduled sweeps at the configured interval.
func (m *Monitor) Start() error {
	if m.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", m.cfg.CheckInterval), func() {
		m.ExecuteAllChecks(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule health sweeps: %w", err)
	}
	c.Start()
	m.cron = c

	m.logger.Debug("health monitor started", "interval", m.cfg.CheckInterval.String())
	return nil
}

// Shutdown stops scheduled sweeps.
func (m *Monitor) Shutdown() {
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
}

// ServiceStatus returns the aggregate status from the last sweep.
func (m *Monitor) ServiceStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serviceStatus
}

// CheckCount returns the number of registered checks.
func (m *Monitor) CheckCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.checks)
}
