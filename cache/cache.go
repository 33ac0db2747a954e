// Package cache keeps upstream reads that every visitor shares, such as the public
// menu and the restaurant marquee, in Redis. Without Redis every call is a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type Cache interface {
	// Get decodes the entry into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, keys ...string)
}

type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a Redis backed cache, or a no-op one when rdb is nil.
func New(rdb *redis.Client, prefix string, ttl time.Duration) Cache {
	if rdb == nil {
		return Nop{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	bs, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.ErrorLogger.Errorf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(bs, dest); err != nil {
		utils.ErrorLogger.Errorf("cache decode %s: %v", key, err)
		return false
	}
	return true
}

// Set stores value for the cache TTL. Failures only cost a future miss.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) {
	bs, err := json.Marshal(value)
	if err != nil {
		utils.ErrorLogger.Errorf("cache encode %s: %v", key, err)
		return
	}
	if err := c.rdb.SetEx(ctx, c.key(key), bs, c.ttl).Err(); err != nil {
		utils.ErrorLogger.Errorf("cache set %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		utils.ErrorLogger.Errorf("cache delete %s: %v", strings.Join(keys, ","), err)
	}
}

type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) bool { return false }
func (Nop) Set(context.Context, string, interface{})      {}
func (Nop) Delete(context.Context, ...string)             {}

// Key helpers shared by readers and invalidators
func MenuKey(restaurantID string) string { return "menu:" + restaurantID }

const RestaurantsKey = "restaurants"
