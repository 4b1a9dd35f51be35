package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firstlook/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.SnapshotCache = (*RedisSnapshotCache)(nil)

const snapshotKeyPrefix = "firstlook:snapshot:"

// RedisSnapshotCache keeps JSON-encoded read models in Redis.
type RedisSnapshotCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisSnapshotCache(client *redis.Client, logger *zap.Logger) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		logger: logger.Named("RedisSnapshotCache"),
	}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		c.logger.Warn("Failed to read snapshot", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("Dropping undecodable snapshot", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, snapshotKeyPrefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	if err := c.client.Set(ctx, snapshotKeyPrefix+key, raw, ttl).Err(); err != nil {
		c.logger.Warn("Failed to write snapshot", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, snapshotKeyPrefix+k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.logger.Warn("Failed to delete snapshots", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings Redis, retrying while it is still starting.
func NewRedisClient(ctx context.Context, addr, password string, db, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("Connected to Redis", zap.String("address", addr), zap.Int("attempt", attempt))
			return client, nil
		}
		_ = client.Close()
		lastErr = err
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}
