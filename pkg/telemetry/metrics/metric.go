package metrics

import (
	"sort"
	"strings"
)

// MetricType identifies the kind of a metric.
type MetricType string

const (
	// TypeCounter is a non-negative, monotonically increasing total.
	TypeCounter MetricType = "counter"

	// TypeGauge is an arbitrary signed value.
	TypeGauge MetricType = "gauge"

	// TypeHistogram is a bucketed distribution with count and sum.
	TypeHistogram MetricType = "histogram"

	// TypeTimer is a histogram of durations with in-flight timing support.
	TypeTimer MetricType = "timer"
)

// Metric is the common interface implemented by Counter, Gauge, Histogram
// and Timer.
type Metric interface {
	// Name returns the metric name.
	Name() string

	// Type returns the metric type.
	Type() MetricType

	// Description returns the help text.
	Description() string

	// Labels returns the label set. The returned map must not be modified.
	Labels() map[string]string
}

// seriesKey computes the registry identity of a metric: name plus the
// label set sorted by key. Two requests with the same name and labels
// always map to the same key regardless of map iteration order.
func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteByte('{')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
		sb.WriteByte('}')
	}
	return sb.String()
}

// copyLabels returns a defensive copy of a label map.
func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	return cp
}
