// Package dashboard composes health, metrics and tracing state into a
// cached service overview.
//
// The Aggregator snapshots the three telemetry subsystems, derives a
// 0-100 performance score from health severity and memory pressure,
// and raises alerts for critical conditions. Snapshots are cached for
// a configurable interval so dashboard polling cannot amplify load.
// HTTP handlers expose the overview, recent traces and live system
// information.
package dashboard
