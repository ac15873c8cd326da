// Package server exposes the observability core over HTTP.
//
// The Server owns the listener lifecycle (start, signal handling,
// graceful shutdown) and the route table: metrics export, health
// probes, the dashboard and trace inspection. Every request passes a
// middleware chain providing panic recovery, request IDs, structured
// request logging, request metrics, trace continuation from incoming
// headers and rate limiting.
//
// The server holds no subsystem state of its own; the composition root
// constructs the telemetry subsystems and injects them via Telemetry.
package server
