package metrics

import "sync"

// Counter is a non-negative running total that only increases.
//
// Counter is safe for concurrent use.
type Counter struct {
	name        string
	description string
	labels      map[string]string

	mu    sync.Mutex
	value float64
}

func newCounter(name, description string, labels map[string]string) *Counter {
	return &Counter{
		name:        name,
		description: description,
		labels:      copyLabels(labels),
	}
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Type returns TypeCounter.
func (c *Counter) Type() MetricType { return TypeCounter }

// Description returns the help text.
func (c *Counter) Description() string { return c.description }

// Labels returns the label set.
func (c *Counter) Labels() map[string]string { return c.labels }

// Inc adds n to the counter. A negative n is rejected with
// ErrNegativeIncrement and leaves the value unchanged.
func (c *Counter) Inc(n float64) error {
	if n < 0 {
		return ErrNegativeIncrement
	}

	c.mu.Lock()
	c.value += n
	c.mu.Unlock()
	return nil
}

// Add is shorthand for Inc(1).
func (c *Counter) Add() {
	_ = c.Inc(1)
}

// Value returns the current total.
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
