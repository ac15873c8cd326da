package metrics

import (
	"sync"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// Registry owns all metric instances, keyed by name plus sorted label set.
//
// Constructors are idempotent: requesting an existing name+labels returns
// the existing instance instead of creating a duplicate. Requesting an
// existing identity as a different type is a programming error; the
// registry logs a warning and returns a detached instance of the
// requested type so the caller keeps a working metric, but the detached
// instance is never exported.
//
// Registry is safe for concurrent use. Metrics live for the process
// lifetime; the registry is torn down only by the composition root.
type Registry struct {
	cfg    config.MetricsConfig
	logger *logging.Logger

	mu      sync.RWMutex
	metrics map[string]Metric

	startTime time.Time
}

// NewRegistry creates a metric registry.
// A nil logger falls back to a no-op logger.
func NewRegistry(cfg config.MetricsConfig, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.SampleBufferSize <= 0 {
		cfg.SampleBufferSize = config.DefaultSampleBufferSize
	}
	if len(cfg.DefaultBuckets) == 0 {
		cfg.DefaultBuckets = config.DefaultHistogramBuckets
	}

	return &Registry{
		cfg:       cfg,
		logger:    logger,
		metrics:   make(map[string]Metric),
		startTime: time.Now(),
	}
}

// Counter returns the counter with the given identity, creating it on
// first use.
func (r *Registry) Counter(name, description string, labels map[string]string) *Counter {
	key := seriesKey(name, labels)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.metrics[key]; ok {
		if c, ok := existing.(*Counter); ok {
			return c
		}
		r.logger.Warn("metric identity registered with a different type",
			"name", name, "requested", TypeCounter, "existing", existing.Type())
		return newCounter(name, description, labels)
	}

	c := newCounter(name, description, labels)
	r.metrics[key] = c
	return c
}

// Gauge returns the gauge with the given identity, creating it on
// first use.
func (r *Registry) Gauge(name, description string, labels map[string]string) *Gauge {
	key := seriesKey(name, labels)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.metrics[key]; ok {
		if g, ok := existing.(*Gauge); ok {
			return g
		}
		r.logger.Warn("metric identity registered with a different type",
			"name", name, "requested", TypeGauge, "existing", existing.Type())
		return newGauge(name, description, labels)
	}

	g := newGauge(name, description, labels)
	r.metrics[key] = g
	return g
}

// Histogram returns the histogram with the given identity, creating it
// on first use. Passing nil buckets uses the configured defaults.
func (r *Registry) Histogram(name, description string, labels map[string]string, buckets []float64) *Histogram {
	key := seriesKey(name, labels)

	if len(buckets) == 0 {
		buckets = r.cfg.DefaultBuckets
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.metrics[key]; ok {
		if h, ok := existing.(*Histogram); ok {
			return h
		}
		r.logger.Warn("metric identity registered with a different type",
			"name", name, "requested", TypeHistogram, "existing", existing.Type())
		return newHistogram(name, description, labels, buckets, r.cfg.SampleBufferSize)
	}

	h := newHistogram(name, description, labels, buckets, r.cfg.SampleBufferSize)
	r.metrics[key] = h
	return h
}

// Timer returns the timer with the given identity, creating it on first
// use. Passing nil buckets uses the configured defaults.
func (r *Registry) Timer(name, description string, labels map[string]string, buckets []float64) *Timer {
	key := seriesKey(name, labels)

	if len(buckets) == 0 {
		buckets = r.cfg.DefaultBuckets
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.metrics[key]; ok {
		if t, ok := existing.(*Timer); ok {
			return t
		}
		r.logger.Warn("metric identity registered with a different type",
			"name", name, "requested", TypeTimer, "existing", existing.Type())
		return newTimer(name, description, labels, buckets, r.cfg.SampleBufferSize, r.logger)
	}

	t := newTimer(name, description, labels, buckets, r.cfg.SampleBufferSize, r.logger)
	r.metrics[key] = t
	return t
}

// Get returns the metric registered under the given identity, or nil.
func (r *Registry) Get(name string, labels map[string]string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[seriesKey(name, labels)]
}

// Each calls fn for every registered metric.
func (r *Registry) Each(fn func(Metric)) {
	r.mu.RLock()
	snapshot := make([]Metric, 0, len(r.metrics))
	for _, m := range r.metrics {
		snapshot = append(snapshot, m)
	}
	r.mu.RUnlock()

	for _, m := range snapshot {
		fn(m)
	}
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

// StartTime returns when the registry was created, which doubles as the
// process start time for the built-in uptime series.
func (r *Registry) StartTime() time.Time {
	return r.startTime
}
