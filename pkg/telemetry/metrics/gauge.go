package metrics

import "sync"

// Gauge is an arbitrary signed value that can go up and down.
//
// Gauge is safe for concurrent use.
type Gauge struct {
	name        string
	description string
	labels      map[string]string

	mu    sync.Mutex
	value float64
}

func newGauge(name, description string, labels map[string]string) *Gauge {
	return &Gauge{
		name:        name,
		description: description,
		labels:      copyLabels(labels),
	}
}

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Type returns TypeGauge.
func (g *Gauge) Type() MetricType { return TypeGauge }

// Description returns the help text.
func (g *Gauge) Description() string { return g.description }

// Labels returns the label set.
func (g *Gauge) Labels() map[string]string { return g.labels }

// Set replaces the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Inc adds n to the gauge. n may be negative.
func (g *Gauge) Inc(n float64) {
	g.mu.Lock()
	g.value += n
	g.mu.Unlock()
}

// Dec subtracts n from the gauge.
func (g *Gauge) Dec(n float64) {
	g.Inc(-n)
}

// Value returns the current value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}
