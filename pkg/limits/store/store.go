package store

import (
	"context"
	"time"
)

// WindowSample is the result of one sliding-window slide: the state of
// the window as observed atomically with recording the new entry.
type WindowSample struct {
	// Count is the number of entries inside the window BEFORE the new
	// entry was recorded. Admission decisions compare this against the
	// limit, so the entry that fills the window is still allowed.
	Count int64

	// Oldest is the timestamp of the oldest surviving entry, including
	// the one just recorded. Zero when the window held nothing. The
	// window resets for a key at Oldest plus the window duration.
	Oldest time.Time
}

// CountingStore records timestamped entries per key and counts how many
// fall inside a sliding window. Implementations must be safe for
// concurrent use.
//
// The store is selected once when the limiter is constructed; callers
// never switch stores at runtime. A store error means the sample is
// unusable, not that the caller should retry against a different
// backend.
type CountingStore interface {
	// Slide atomically prunes entries older than the window, observes
	// the surviving count, and records a new entry at now.
	Slide(ctx context.Context, key string, window time.Duration, now time.Time) (WindowSample, error)

	// Peek counts entries inside the window without recording one.
	Peek(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error)

	// Reset discards all entries for a key.
	Reset(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
