// Package store provides the counting backends for sliding-window rate
// limiting.
//
// A CountingStore records timestamped entries per key and atomically
// reports how many fall inside a rolling window. Two implementations
// exist: MemoryStore keeps per-process state with no external
// dependency, and RedisStore shares one window across processes through
// a redis sorted set.
//
// The backend is chosen once at construction time from configuration.
// Nothing in the request path inspects connection state or falls back
// between backends; a store error surfaces to the caller, which decides
// the failure policy.
package store
