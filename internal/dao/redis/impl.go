// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"tradezone_chat_server/pkg/errorx"
)

// RedisCache CacheService 接口的 Redis 实现
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存实例
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// GetOrError 获取键对应的值（键不存在返回错误）
func (r *RedisCache) GetOrError(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errorx.Wrapf(err, errorx.CodeNotFound, "redis key %s not found", key)
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键（如果存在）
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis exists key %s", key)
	}
	if exists == 1 {
		if err := r.client.Unlink(ctx, key).Err(); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
		}
	}
	return nil
}

// 确保 RedisCache 实现了 CacheService 接口
var _ CacheService = (*RedisCache)(nil)
