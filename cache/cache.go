package cache

import (
	"context"
	"fmt"
	"time"

	"academy-svc/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects the cache used for catalog reads.
func InitRedis(cfg config.Redis, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return client, nil
}
