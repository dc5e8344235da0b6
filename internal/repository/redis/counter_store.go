package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
)

// CounterStoreRedis backs attempt and rate counters with redis, giving
// cluster-wide counting when the service runs more than one instance.
type CounterStoreRedis struct {
	client *redis.Client
	prefix string
}

func NewCounterStoreRedis(client *redis.Client, prefix string) *CounterStoreRedis {
	if prefix == "" {
		prefix = "counter"
	}
	return &CounterStoreRedis{client: client, prefix: prefix}
}

func (s *CounterStoreRedis) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

// Increment bumps the counter and ensures a TTL is set on first touch.
func (s *CounterStoreRedis) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	redisKey := s.key(key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	if count == 1 && ttl > 0 {
		if err := s.client.Expire(ctx, redisKey, ttl).Err(); err != nil {
			return count, fmt.Errorf("failed to set counter expiry: %w", err)
		}
	}
	return count, nil
}

func (s *CounterStoreRedis) Get(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Get(ctx, s.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get counter: %w", err)
	}
	return count, nil
}

func (s *CounterStoreRedis) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset counter: %w", err)
	}
	return nil
}

var _ interfaces.CounterStore = (*CounterStoreRedis)(nil)
