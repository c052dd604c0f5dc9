package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisInvalidator deletes tag keys from Redis so the next reader repopulates.
type RedisInvalidator struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisInvalidator(addr, password string, db int, keyPrefix string) *RedisInvalidator {
	return &RedisInvalidator{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		keyPrefix: keyPrefix,
	}
}

// Connect verifies the connection.
func (r *RedisInvalidator) Connect(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tags))
	for _, tag := range tags {
		keys = append(keys, r.keyPrefix+":"+tag)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func (r *RedisInvalidator) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
