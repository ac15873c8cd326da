package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// bridge adapts the Registry to the prometheus.Collector interface so
// hosts already running the standard Prometheus toolchain can scrape
// the registry through promhttp alongside the native text endpoint.
//
// The bridge is an unchecked collector: Describe sends no descriptors,
// and Collect builds const metrics from a live snapshot on every scrape.
type bridge struct {
	registry *Registry
}

// Collector returns the registry as a prometheus.Collector.
func (r *Registry) Collector() prometheus.Collector {
	return &bridge{registry: r}
}

// PrometheusHandler returns an http.Handler serving the registry through
// the client_golang exposition pipeline.
func (r *Registry) PrometheusHandler() http.Handler {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(r.Collector())
	return promhttp.HandlerFor(promReg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Describe implements prometheus.Collector. Sending no descriptors marks
// the bridge as unchecked, which is required because the metric set
// grows at runtime.
func (b *bridge) Describe(ch chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (b *bridge) Collect(ch chan<- prometheus.Metric) {
	b.registry.Each(func(m Metric) {
		name := sanitizeName(m.Name())
		labels := m.Labels()

		switch v := m.(type) {
		case *Counter:
			desc := prometheus.NewDesc(name, v.Description(), nil, labels)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, v.Value())
		case *Gauge:
			desc := prometheus.NewDesc(name, v.Description(), nil, labels)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v.Value())
		case *Histogram:
			collectHistogram(ch, name, v.Description(), labels, v.snapshot())
		case *Timer:
			h := v.Histogram()
			collectHistogram(ch, name, v.Description(), labels, h.snapshot())
		}
	})
}

// collectHistogram emits a const histogram built from a snapshot.
func collectHistogram(ch chan<- prometheus.Metric, name, help string, labels map[string]string, snap histogramSnapshot) {
	buckets := make(map[float64]uint64, len(snap.buckets))
	for i, le := range snap.buckets {
		buckets[le] = snap.counts[i]
	}

	desc := prometheus.NewDesc(name, help, nil, labels)
	ch <- prometheus.MustNewConstHistogram(desc, snap.count, snap.sum, buckets)
}

// sanitizeName maps a metric name onto the Prometheus name charset.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}
