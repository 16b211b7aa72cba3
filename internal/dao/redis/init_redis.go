// Package redis 提供 Redis 连接的初始化
package redis

import (
	"context"
	"fmt"
	"time"

	"tradezone_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 建立 Redis 连接并返回 CacheService 实现
// 连接失败时直接 Fatal 退出，Token 存储是登录链路的硬依赖
func Init() *RedisCache {
	conf := config.GetConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.RedisConfig.Host, conf.RedisConfig.Port),
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("redis connect failed", zap.Error(err))
	}

	return NewRedisCache(client)
}
