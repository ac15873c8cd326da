// Obscore is the observability and adaptive traffic-control core used by
// the SharkLearning platform services.
//
// It runs as a sidecar-style HTTP service providing:
//   - A metric registry with Prometheus and JSON exposition
//   - Distributed tracing with W3C-style header propagation
//   - A health monitor with escalating failure detection
//   - A sliding-window adaptive rate limiter (redis or in-process)
//   - A dashboard endpoint composing all subsystems into one snapshot
//
// Usage:
//
//	# Start with built-in defaults
//	obscore run
//
//	# Start with a configuration file
//	obscore run --config /etc/obscore/config.yaml
//
//	# Validate a configuration file without starting the server
//	obscore run --config config.yaml --dry-run
//
//	# Show version information
//	obscore version
package main

func main() {
	Execute()
}
