package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
	"github.com/ayefimenko/sharklearning-sub001/pkg/limits/store"
	"github.com/ayefimenko/sharklearning-sub001/pkg/telemetry/logging"
)

// DenialType identifies which window denied a request.
type DenialType string

const (
	// DenialBurst means the short burst window denied the request.
	DenialBurst DenialType = "burst"

	// DenialWindow means the main sliding window denied the request.
	DenialWindow DenialType = "window"
)

// burstKeySuffix separates the burst window's entries from the main
// window's under the same logical key.
const burstKeySuffix = ":burst"

// Decision is the outcome of one admission check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Type names the denying window. Empty when allowed.
	Type DenialType

	// Limit is the effective limit of the governing window. For allowed
	// requests this is the (possibly adaptively scaled) main limit.
	Limit int

	// Current is the number of attempts already inside the governing
	// window, not counting this one.
	Current int

	// Remaining is how many further attempts the main window admits.
	Remaining int

	// Reset is when the governing window next frees a slot.
	Reset time.Time

	// RetryAfter is how long a denied caller should wait. Zero when
	// allowed.
	RetryAfter time.Duration
}

// Limiter makes allow/deny decisions per request key using two
// independent sliding windows and an optional adaptive controller.
//
// The burst window is evaluated first: a small, tight window that
// blunts short bursts regardless of the main window's headroom. The
// main window then enforces the (possibly adaptively shrunk) sustained
// limit. A decision compares the count BEFORE recording the current
// attempt, and the attempt is recorded in both windows whether admitted
// or denied, so retry storms cannot hold a window open.
type Limiter struct {
	mu       sync.RWMutex
	cfg      config.RateLimitConfig
	store    store.CountingStore
	adaptive *AdaptiveController
	logger   *logging.Logger
	now      func() time.Time
}

// NewLimiter creates a limiter over the given counting store. The store
// is fixed for the limiter's lifetime. A nil adaptive controller keeps
// the configured limit as-is; a nil logger falls back to a no-op
// logger.
func NewLimiter(cfg config.RateLimitConfig, cs store.CountingStore, adaptive *AdaptiveController, logger *logging.Logger) *Limiter {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Limiter{
		cfg:      normalizeConfig(cfg),
		store:    cs,
		adaptive: adaptive,
		logger:   logger,
		now:      time.Now,
	}
}

// normalizeConfig backfills zero or negative window settings with the
// package defaults.
func normalizeConfig(cfg config.RateLimitConfig) config.RateLimitConfig {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = config.DefaultMaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = config.DefaultWindow
	}
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = config.DefaultBurstLimit
	}
	if cfg.BurstWindow <= 0 {
		cfg.BurstWindow = config.DefaultBurstWindow
	}
	return cfg
}

// ApplyConfig swaps the limiter's window settings at runtime. The
// counting store and adaptive controller are fixed; only the ceilings
// and window durations change. In-flight decisions finish under the
// settings they started with.
func (l *Limiter) ApplyConfig(cfg config.RateLimitConfig) {
	next := normalizeConfig(cfg)

	l.mu.Lock()
	prev := l.cfg
	l.cfg = next
	l.mu.Unlock()

	if prev.MaxRequests != next.MaxRequests || prev.Window != next.Window ||
		prev.BurstLimit != next.BurstLimit || prev.BurstWindow != next.BurstWindow {
		l.logger.Info("rate limit settings updated",
			"max_requests", next.MaxRequests,
			"window", next.Window.String(),
			"burst_limit", next.BurstLimit,
			"burst_window", next.BurstWindow.String())
	}
}

// config returns a snapshot of the current settings.
func (l *Limiter) config() config.RateLimitConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Allow records one attempt under the key and decides whether it may
// proceed. A store error is returned alongside an allowing decision so
// callers can fail open without special-casing.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	cfg := l.config()
	now := l.now()

	burst, err := l.store.Slide(ctx, key+burstKeySuffix, cfg.BurstWindow, now)
	if err != nil {
		return failOpen(cfg.MaxRequests), fmt.Errorf("burst window slide: %w", err)
	}

	main, err := l.store.Slide(ctx, key, cfg.Window, now)
	if err != nil {
		return failOpen(cfg.MaxRequests), fmt.Errorf("main window slide: %w", err)
	}

	if burst.Count >= int64(cfg.BurstLimit) {
		return l.deny(DenialBurst, cfg.BurstLimit, int(burst.Count), burst.Oldest, cfg.BurstWindow, now), nil
	}

	limit := l.effectiveLimit(cfg)
	if main.Count >= int64(limit) {
		return l.deny(DenialWindow, limit, int(main.Count), main.Oldest, cfg.Window, now), nil
	}

	remaining := limit - int(main.Count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     limit,
		Current:   int(main.Count),
		Remaining: remaining,
		Reset:     resetAt(main.Oldest, cfg.Window, now),
	}, nil
}

// EffectiveLimit returns the main window limit after adaptive scaling.
func (l *Limiter) EffectiveLimit() int {
	return l.effectiveLimit(l.config())
}

func (l *Limiter) effectiveLimit(cfg config.RateLimitConfig) int {
	if !cfg.Adaptive || l.adaptive == nil {
		return cfg.MaxRequests
	}
	return l.adaptive.EffectiveLimit(cfg.MaxRequests)
}

// Reset discards both windows for a key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.store.Reset(ctx, key+burstKeySuffix); err != nil {
		return err
	}
	return l.store.Reset(ctx, key)
}

// Window returns the configured main window duration.
func (l *Limiter) Window() time.Duration {
	return l.config().Window
}

// deny builds a denial decision for the governing window.
func (l *Limiter) deny(t DenialType, limit, current int, oldest time.Time, window time.Duration, now time.Time) Decision {
	reset := resetAt(oldest, window, now)
	retryAfter := reset.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	l.logger.Warn("rate limit exceeded",
		"type", string(t),
		"limit", limit,
		"current", current,
		"retry_after", retryAfter.String())

	return Decision{
		Allowed:    false,
		Type:       t,
		Limit:      limit,
		Current:    current,
		Remaining:  0,
		Reset:      reset,
		RetryAfter: retryAfter,
	}
}

// resetAt computes when the window frees its oldest slot.
func resetAt(oldest time.Time, window time.Duration, now time.Time) time.Time {
	if oldest.IsZero() {
		return now.Add(window)
	}
	return oldest.Add(window)
}

// failOpen is the decision handed back on store errors: the request is
// admitted and the caller logs the error. Availability is preferred
// over strict enforcement when the store itself is the failure.
func failOpen(limit int) Decision {
	return Decision{Allowed: true, Limit: limit, Remaining: limit}
}
