package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts in Redis, giving correct limits across process instances.
// The counter key inherits a TTL of one window from its first increment.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds connection settings for the counting store.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     20,
			ReadTimeout:  10 * time.Second,
			DialTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}),
	}
}

// NewRedisStoreFromClient wraps an existing client, for shared pools in tests
// and embedded setups.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: only the first increment of a window sets the expiry, so the window
	// is anchored to the first request rather than sliding on every hit.
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
