package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// Timer measures operation durations into a histogram, in seconds.
//
// A Timer supports two usage patterns: explicit Start/End pairs keyed by
// an opaque timing ID, and the Time wrapper which guarantees exactly one
// End per Start even when the wrapped function returns an error.
//
// Timer is safe for concurrent use.
type Timer struct {
	histogram *Histogram
	logger    *logging.Logger

	mu     sync.Mutex
	active map[string]time.Time
}

func newTimer(name, description string, labels map[string]string, buckets []float64, sampleCap int, logger *logging.Logger) *Timer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Timer{
		histogram: newHistogram(name, description, labels, buckets, sampleCap),
		logger:    logger,
		active:    make(map[string]time.Time),
	}
}

// Name returns the metric name.
func (t *Timer) Name() string { return t.histogram.name }

// Type returns TypeTimer.
func (t *Timer) Type() MetricType { return TypeTimer }

// Description returns the help text.
func (t *Timer) Description() string { return t.histogram.description }

// Labels returns the label set.
func (t *Timer) Labels() map[string]string { return t.histogram.labels }

// Histogram returns the underlying duration histogram.
func (t *Timer) Histogram() *Histogram { return t.histogram }

// Start begins a timing and returns its ID for the matching End call.
func (t *Timer) Start() string {
	id := uuid.NewString()

	t.mu.Lock()
	t.active[id] = time.Now()
	t.mu.Unlock()

	return id
}

// End finishes the timing with the given ID, records its duration and
// returns it. Ending an unknown ID is a no-op: it logs a warning and
// returns 0.
func (t *Timer) End(id string) time.Duration {
	t.mu.Lock()
	start, ok := t.active[id]
	if ok {
		delete(t.active, id)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("timer end without matching start", "timer", t.histogram.name, "id", id)
		return 0
	}

	elapsed := time.Since(start)
	t.histogram.Observe(elapsed.Seconds())
	return elapsed
}

// Time runs fn and records its duration. The duration is recorded even
// when fn returns an error or panics.
func (t *Timer) Time(fn func() error) error {
	id := t.Start()
	defer t.End(id)
	return fn()
}

// ActiveCount returns the number of in-flight timings.
func (t *Timer) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
