package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"gatehouse/internal/platform/redis"
	"gatehouse/pkg/platform/sentinel"
)

const (
	failuresKeyPrefix = "lockout:failures:"
	lockKeyPrefix     = "lockout:lock:"
)

// RedisStore shares lockout state across replicas. Failure counters and
// locks both live as TTL'd keys, so expiry needs no background sweeper.
// Transport failures wrap sentinel.ErrUnavailable so the caller can tell an
// unreachable backend from a genuine lock state.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) IncrFailures(ctx context.Context, key string, window time.Duration) (int, error) {
	failKey := failuresKeyPrefix + key
	count, err := r.client.Incr(ctx, failKey).Result()
	if err != nil {
		return 0, fmt.Errorf("incr failures: %w: %w", sentinel.ErrUnavailable, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, failKey, window).Err(); err != nil {
			return 0, fmt.Errorf("set failure window: %w: %w", sentinel.ErrUnavailable, err)
		}
	}
	return int(count), nil
}

func (r *RedisStore) Lock(ctx context.Context, key string, lockFor time.Duration) error {
	if err := r.client.Set(ctx, lockKeyPrefix+key, "1", lockFor).Err(); err != nil {
		return fmt.Errorf("set lock: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) IsLocked(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := r.client.TTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("lock ttl: %w: %w", sentinel.ErrUnavailable, err)
	}
	// TTL returns a negative duration for a missing or unexpiring key.
	if ttl <= 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, failuresKeyPrefix+key, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear lockout keys: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
