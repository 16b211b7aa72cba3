// Package redis 定义缓存服务接口
// 遵循依赖倒置原则，Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
// 目前用于存储 Refresh Token ID（单点互踢），抽象为接口便于测试时替换为内存实现
type CacheService interface {
	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// GetOrError 获取键对应的值（键不存在返回错误）
	GetOrError(ctx context.Context, key string) (string, error)
	// Delete 删除键（如果存在）
	Delete(ctx context.Context, key string) error
}
