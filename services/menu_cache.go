package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

const menuCacheKey = "menu:available"

// MenuCache caches the public menu listing in redis. When REDIS_ADDR is not
// configured the cache is a no-op and every read goes to the database.
type MenuCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMenuCache connects to redis if REDIS_ADDR is set.
func NewMenuCache() *MenuCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return &MenuCache{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	return &MenuCache{rdb: rdb, ttl: 5 * time.Minute}
}

// Get returns the cached menu listing, or nil on miss or when disabled.
func (mc *MenuCache) Get(ctx context.Context) []models.MenuItem {
	if mc.rdb == nil {
		return nil
	}

	cached, err := mc.rdb.Get(ctx, menuCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.ErrorLogger.Printf("Error reading menu cache: %v", err)
		}
		return nil
	}

	var items []models.MenuItem
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		utils.ErrorLogger.Printf("Error unmarshalling menu cache: %v", err)
		return nil
	}
	return items
}

// Set stores the menu listing.
func (mc *MenuCache) Set(ctx context.Context, items []models.MenuItem) {
	if mc.rdb == nil {
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshalling menu cache: %v", err)
		return
	}

	if err := mc.rdb.Set(ctx, menuCacheKey, data, mc.ttl).Err(); err != nil {
		utils.ErrorLogger.Printf("Error writing menu cache: %v", err)
	}
}

// Invalidate drops the cached listing. Called on every menu mutation and on
// stock changes from order placement.
func (mc *MenuCache) Invalidate(ctx context.Context) {
	if mc.rdb == nil {
		return
	}

	if err := mc.rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		utils.ErrorLogger.Printf("Error invalidating menu cache: %v", err)
	}
}
