package store

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// sweepProbability is the chance a Slide triggers a full sweep of all
// keys, dropping keys whose entries have all expired. Keeps idle keys
// from accumulating without a background goroutine.
const sweepProbability = 0.01

// MemoryStore counts sliding-window entries in process memory. State is
// per-process: replicas each enforce their own windows, so effective
// capacity scales with replica count. Use RedisStore when limits must
// hold across processes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time

	// longest window seen per key, used by the sweep to decide expiry
	windows map[string]time.Duration
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
		windows: make(map[string]time.Duration),
	}
}

// Slide prunes, counts and records under one lock acquisition, giving
// the same atomicity the redis transaction provides across processes.
func (s *MemoryStore) Slide(ctx context.Context, key string, window time.Duration, now time.Time) (WindowSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.entries[key], now.Add(-window))
	sample := WindowSample{Count: int64(len(kept))}

	kept = append(kept, now)
	s.entries[key] = kept
	if window > s.windows[key] {
		s.windows[key] = window
	}
	sample.Oldest = kept[0]

	if rand.Float64() < sweepProbability {
		s.sweepLocked(now)
	}
	return sample, nil
}

// Peek counts entries inside the window without recording one.
func (s *MemoryStore) Peek(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	var n int64
	for _, t := range s.entries[key] {
		if t.After(cutoff) {
			n++
		}
	}
	return n, nil
}

// Reset discards all entries for a key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	delete(s.windows, key)
	s.mu.Unlock()
	return nil
}

// Close releases the store's state.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[string][]time.Time)
	s.windows = make(map[string]time.Duration)
	s.mu.Unlock()
	return nil
}

// sweepLocked drops keys whose entries all fall outside their window.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, times := range s.entries {
		kept := prune(times, now.Add(-s.windows[key]))
		if len(kept) == 0 {
			delete(s.entries, key)
			delete(s.windows, key)
			continue
		}
		s.entries[key] = kept
	}
}

// prune returns the suffix of times newer than cutoff. Entries are
// appended in time order, so the first surviving index bounds the rest.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append([]time.Time(nil), times[i:]...)
}
