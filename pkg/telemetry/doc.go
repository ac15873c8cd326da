// Package telemetry provides observability for SharkLearning services.
//
// # Overview
//
// The telemetry packages implement structured logging, a metric registry
// with Prometheus and JSON exposition, lightweight distributed tracing
// with header propagation, and a health monitor with escalating failure
// detection.
//
// # Components
//
//   - logging: structured logging with secret redaction
//   - metrics: counters, gauges, histograms and timers with exposition
//   - tracing: spans, trace propagation and span exporters
//   - health: periodic health checks with status escalation
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	registry := metrics.NewRegistry(cfg.Metrics, logger)
//	tracer := tracing.NewTracer(cfg.Tracing, "course-service", logger)
//	monitor := health.NewMonitor(cfg.Health, "course-service", "1.0.0", logger)
//
// Subsystems are constructed at the composition root and passed to
// consumers explicitly. Nothing in these packages holds process-global
// state.
package telemetry
