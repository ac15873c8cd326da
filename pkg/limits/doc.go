// Package limits provides sliding-window rate limiting over a pluggable
// counting store.
//
// # Overview
//
// The limits packages decide, per client key, whether a request may
// proceed. Two windows are consulted on every request: a short burst
// window that catches spikes, and the main window that enforces
// sustained throughput. Denied attempts still count, so a client that
// keeps retrying does not reopen its own window.
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - ratelimit: the limiter, adaptive limit scaling and HTTP middleware
//   - store: counting store implementations (redis, in-process)
//
// The counting store is chosen once at startup. On store errors the
// limiter fails open: the request proceeds and the error is surfaced to
// the caller for logging.
//
// # Usage
//
//	cs := store.NewMemoryStore()
//	limiter := ratelimit.NewLimiter(cfg.RateLimit, cs, nil, logger)
//
//	decision, err := limiter.Allow(ctx, "client-key")
//	if err == nil && !decision.Allowed {
//		// reject with decision.RetryAfter
//	}
package limits
