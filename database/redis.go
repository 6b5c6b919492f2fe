package database

import (
	"context"
	"fmt"
	"time"

	"manualctf/config"
	"manualctf/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RDB 为 nil 表示未启用 Redis
var RDB *redis.Client

func InitRedis(cfg config.RedisConfig) error {
	if cfg.Addr == "" {
		logger.L().Info("redis disabled, scoreboard cache and attempt ratelimit are off")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	RDB = client

	logger.L().Info("redis connection established", zap.String("addr", cfg.Addr))
	return nil
}
