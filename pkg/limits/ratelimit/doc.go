// Package ratelimit implements a sliding-window, burst-aware, adaptive
// rate limiter.
//
// Each request key is guarded by two independent windows. The burst
// window is short and tight and is evaluated first, turning away rapid
// bursts even when the main window has headroom. The main window
// enforces the sustained limit, optionally shrunk by an
// AdaptiveController when the process is under heap pressure or the
// recent error rate is elevated.
//
// Decisions compare against the window count before the current attempt
// is recorded, and attempts are recorded whether admitted or denied.
// Counting is delegated to a store.CountingStore chosen once at
// construction; store errors fail open.
//
// Middleware adapts the limiter to net/http with the conventional
// X-RateLimit response headers and structured 429 bodies.
package ratelimit
