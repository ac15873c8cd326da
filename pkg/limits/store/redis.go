package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayefimenko/sharklearning-sub001/pkg/config"
)

// keyPrefix namespaces limiter keys so a shared redis can serve other
// tenants without collisions.
const keyPrefix = "obscore:rl:"

// RedisStore counts sliding-window entries in a redis sorted set per
// key, scored by entry timestamp in milliseconds. Multiple processes
// pointed at the same redis share one window per key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection with a
// ping. Connection failure is returned to the caller; the store never
// silently degrades to another backend.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
// Close closes the client either way.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Slide prunes, counts and records in one transaction so concurrent
// callers across processes observe consistent window state.
func (s *RedisStore) Slide(ctx context.Context, key string, window time.Duration, now time.Time) (WindowSample, error) {
	rkey := keyPrefix + key
	cutoff := now.Add(-window).UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "-inf", strconv.FormatInt(cutoff, 10))
	countCmd := pipe.ZCard(ctx, rkey)
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	oldestCmd := pipe.ZRangeWithScores(ctx, rkey, 0, 0)
	pipe.Expire(ctx, rkey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return WindowSample{}, fmt.Errorf("redis slide failed for key %s: %w", key, err)
	}

	sample := WindowSample{Count: countCmd.Val()}
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		sample.Oldest = time.UnixMilli(int64(oldest[0].Score))
	}
	return sample, nil
}

// Peek counts entries inside the window without recording one.
func (s *RedisStore) Peek(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	rkey := keyPrefix + key
	cutoff := now.Add(-window).UnixMilli()

	n, err := s.client.ZCount(ctx, rkey,
		"("+strconv.FormatInt(cutoff, 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis peek failed for key %s: %w", key, err)
	}
	return n, nil
}

// Reset discards all entries for a key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis reset failed for key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
