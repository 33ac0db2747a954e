package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// NewRedisClient connects to REDIS_ADDR. It returns nil when no address is configured
// or the server does not answer a ping; callers then run without the response cache.
func NewRedisClient(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Errorf("redis unavailable at %s: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}
	return client
}
