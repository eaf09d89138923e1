package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgarrido/wms/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "movement:"
	idempotencyKeyTTL    = 24 * time.Hour
	statsKey             = "dashboard:stats"
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

func (r *RedisAdapter) GetStats(ctx context.Context) (*domain.WarehouseStats, error) {
	raw, err := r.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats domain.WarehouseStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// Corrupt cache entry: treat as a miss, the next SetStats
		// overwrites it.
		return nil, nil
	}
	return &stats, nil
}

func (r *RedisAdapter) SetStats(ctx context.Context, stats domain.WarehouseStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKey, raw, ttl).Err()
}

func (r *RedisAdapter) InvalidateStats(ctx context.Context) error {
	return r.client.Del(ctx, statsKey).Err()
}
