package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PrometheusText renders every registered metric in the Prometheus text
// exposition format: a # HELP and # TYPE line per metric name followed
// by one line per series. Histograms and timers expand into _bucket
// series (with le thresholds plus +Inf), _count and _sum.
//
// Output is deterministic: names and label sets are sorted.
func (r *Registry) PrometheusText() string {
	byName := r.groupByName()

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		group := byName[name]
		first := group[0]

		promType := first.Type()
		if promType == TypeTimer {
			promType = TypeHistogram
		}

		fmt.Fprintf(&sb, "# HELP %s %s\n", name, first.Description())
		fmt.Fprintf(&sb, "# TYPE %s %s\n", name, promType)

		for _, m := range group {
			writeSeries(&sb, m)
		}
	}

	return sb.String()
}

// groupByName collects registered metrics keyed by metric name, each
// group sorted by label identity for stable output.
func (r *Registry) groupByName() map[string][]Metric {
	byName := make(map[string][]Metric)
	r.Each(func(m Metric) {
		byName[m.Name()] = append(byName[m.Name()], m)
	})
	for _, group := range byName {
		sort.Slice(group, func(i, j int) bool {
			return seriesKey(group[i].Name(), group[i].Labels()) <
				seriesKey(group[j].Name(), group[j].Labels())
		})
	}
	return byName
}

// writeSeries writes the exposition lines for one metric instance.
func writeSeries(sb *strings.Builder, m Metric) {
	switch v := m.(type) {
	case *Counter:
		fmt.Fprintf(sb, "%s%s %s\n", v.Name(), formatLabels(v.Labels(), "", 0), formatValue(v.Value()))
	case *Gauge:
		fmt.Fprintf(sb, "%s%s %s\n", v.Name(), formatLabels(v.Labels(), "", 0), formatValue(v.Value()))
	case *Histogram:
		writeHistogramSeries(sb, v.Name(), v.Labels(), v.snapshot())
	case *Timer:
		h := v.Histogram()
		writeHistogramSeries(sb, v.Name(), v.Labels(), h.snapshot())
	}
}

// writeHistogramSeries writes _bucket, _count and _sum lines.
func writeHistogramSeries(sb *strings.Builder, name string, labels map[string]string, snap histogramSnapshot) {
	for i, le := range snap.buckets {
		fmt.Fprintf(sb, "%s_bucket%s %d\n", name, formatLabels(labels, "le", le), snap.counts[i])
	}
	fmt.Fprintf(sb, "%s_bucket%s %d\n", name, formatLabelsInf(labels), snap.count)
	fmt.Fprintf(sb, "%s_count%s %d\n", name, formatLabels(labels, "", 0), snap.count)
	fmt.Fprintf(sb, "%s_sum%s %s\n", name, formatLabels(labels, "", 0), formatValue(snap.sum))
}

// formatLabels renders a {k="v",...} label block with sorted keys.
// When leKey is non-empty an le label with the given threshold is
// appended after the sorted labels.
func formatLabels(labels map[string]string, leKey string, le float64) string {
	if len(labels) == 0 && leKey == "" {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%q", k, labels[k])
	}
	if leKey != "" {
		if len(keys) > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%q", leKey, formatValue(le))
	}
	sb.WriteByte('}')
	return sb.String()
}

// formatLabelsInf renders labels with le="+Inf" appended.
func formatLabelsInf(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%q", k, labels[k])
	}
	if len(keys) > 0 {
		sb.WriteByte(',')
	}
	sb.WriteString(`le="+Inf"}`)
	return sb.String()
}

// formatValue renders a float without trailing noise.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Snapshot is a point-in-time JSON view of the registry.
type Snapshot struct {
	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`

	// Metrics holds one entry per registered metric.
	Metrics []MetricSnapshot `json:"metrics"`
}

// MetricSnapshot is the JSON view of a single metric.
type MetricSnapshot struct {
	Name        string            `json:"name"`
	Type        MetricType        `json:"type"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`

	// Value is set for counters and gauges.
	Value *float64 `json:"value,omitempty"`

	// Histogram fields (also set for timers).
	Count       uint64             `json:"count,omitempty"`
	Sum         float64            `json:"sum,omitempty"`
	Buckets     map[string]uint64  `json:"buckets,omitempty"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
}

// JSONSnapshot returns a point-in-time view of every registered metric,
// including approximate p50/p90/p95/p99 for histograms and timers.
func (r *Registry) JSONSnapshot() Snapshot {
	snap := Snapshot{Timestamp: time.Now()}

	byName := r.groupByName()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, m := range byName[name] {
			snap.Metrics = append(snap.Metrics, metricSnapshot(m))
		}
	}
	return snap
}

func metricSnapshot(m Metric) MetricSnapshot {
	ms := MetricSnapshot{
		Name:        m.Name(),
		Type:        m.Type(),
		Description: m.Description(),
		Labels:      m.Labels(),
	}

	switch v := m.(type) {
	case *Counter:
		val := v.Value()
		ms.Value = &val
	case *Gauge:
		val := v.Value()
		ms.Value = &val
	case *Histogram:
		fillHistogramSnapshot(&ms, v)
	case *Timer:
		fillHistogramSnapshot(&ms, v.Histogram())
	}
	return ms
}

func fillHistogramSnapshot(ms *MetricSnapshot, h *Histogram) {
	snap := h.snapshot()
	ms.Count = snap.count
	ms.Sum = snap.sum

	ms.Buckets = make(map[string]uint64, len(snap.buckets))
	for i, le := range snap.buckets {
		ms.Buckets[formatValue(le)] = snap.counts[i]
	}

	ms.Percentiles = map[string]float64{
		"p50": h.Percentile(50),
		"p90": h.Percentile(90),
		"p95": h.Percentile(95),
		"p99": h.Percentile(99),
	}
}
