// Package metrics implements the metric registry: counters, gauges,
// histograms and timers keyed by name plus sorted label set, with
// Prometheus text and JSON export.
//
// # Identity
//
// A metric's identity is its name and label set. Constructors are
// idempotent: the first call creates the metric, later calls with the
// same identity return the same instance. This makes instrumentation
// call sites self-contained; nothing needs to pre-register series.
//
// # Histograms
//
// Histograms carry fixed ascending bucket boundaries with cumulative
// per-bucket counts, a running count and sum, and a capped rolling
// sample buffer (1000 most-recent values by default) used only for
// approximate percentile estimation.
//
// # Timers
//
//	timer := registry.Timer("db_query_seconds", "Query latency", nil, nil)
//	err := timer.Time(func() error { return db.Query(ctx) })
//
// Time guarantees exactly one End per Start even when the wrapped
// function fails. Ending an unknown timing ID is a logged no-op.
//
// # Built-in series
//
// RuntimeCollector publishes process memory, CPU, uptime, goroutine and
// scheduler-latency series on a fixed 10s schedule.
//
// # Export
//
// The native handler serves /metrics?format=prometheus|json. The
// Collector bridge additionally exposes the registry to client_golang
// scrape pipelines for hosts standardized on promhttp.
package metrics
