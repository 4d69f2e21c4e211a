package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"palco/internal/config"
	"palco/internal/models"

	"github.com/redis/go-redis/v9"
)

const feeScheduleKey = "fees:schedule"

// ScheduleLoader reads the authoritative fee schedule, normally from the
// settings table.
type ScheduleLoader interface {
	LoadFeeSchedule(ctx context.Context) (*models.FeeSchedule, error)
}

// RedisFeeCache caches the commission configuration in Redis with explicit
// invalidation. The database stays the source of truth; the cache only
// absorbs the read on every settlement.
type RedisFeeCache struct {
	client *redis.Client
	loader ScheduleLoader
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisFeeCache(client *redis.Client, loader ScheduleLoader, ttl time.Duration) *RedisFeeCache {
	return &RedisFeeCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *RedisFeeCache) Schedule(ctx context.Context) (*models.FeeSchedule, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	val, err := r.client.Get(ctx, feeScheduleKey).Result()
	if err == nil {
		var schedule models.FeeSchedule
		if err := json.Unmarshal([]byte(val), &schedule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fee schedule: %w", err)
		}
		return &schedule, nil
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("failed to get fee schedule from redis: %w", err)
	}

	schedule, err := r.loader.LoadFeeSchedule(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fee schedule: %w", err)
	}
	if err := r.client.Set(ctx, feeScheduleKey, data, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to set fee schedule in redis: %w", err)
	}

	return schedule, nil
}

func (r *RedisFeeCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, feeScheduleKey).Err(); err != nil {
		return fmt.Errorf("failed to delete fee schedule from redis: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
