// Package tracing implements the distributed-tracing span model with
// cross-process context propagation.
//
// # Spans and traces
//
// A trace is the set of spans sharing one trace ID, forming a tree via
// parent span IDs. Spans carry tags, ordered logs and baggage; baggage
// propagates to children as a snapshot taken at child creation and
// across process boundaries via headers.
//
//	span := tracer.StartTrace("handle_enrollment", tracing.WithSpanType("http"))
//	defer span.Finish()
//
//	child := span.Child("load_course", tracing.WithSpanType("database"))
//	child.RecordDatabase("postgres", query)
//	child.Finish()
//
// # Sampling
//
// Sampling is a per-trace Bernoulli decision. Unsampled traces yield a
// no-op span whose methods are all safe; call sites never branch on
// whether a span is real.
//
// # Propagation
//
// InjectIntoHeaders and ExtractFromHeaders implement the wire contract:
// x-trace-id, x-span-id, x-parent-span-id, x-service-name,
// x-operation-name, plus one baggage-<key> header per baggage entry.
// A downstream hop continues the trace only when both the trace and
// span ID headers are present.
//
// # Export
//
// Finish hands the span to every registered Exporter. Exporter errors
// and panics are isolated per exporter and logged; they never block
// other exporters or reach the instrumented code path. Finished spans
// are additionally retained in a capped ring buffer for /traces
// introspection.
package tracing
