// Package cache provides the catalog read cache.
//
// Two drivers share the Store interface: "redis" (go-redis) and "memory"
// (in-process, TTL-aware). Values are JSON-encoded so both drivers behave
// identically from the caller's side:
//
//	var item models.Item
//	if c.Get(ctx, "items:"+id, &item) {
//	    return &item, nil
//	}
//	...
//	_ = c.Set(ctx, "items:"+id, item, 5*time.Minute)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Store is a key/value cache with per-key TTL.
type Store interface {
	// Get unmarshals the cached value into dest. Returns true on a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// New returns the Store selected by cfg.CacheDriver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.CacheDriver {
	case "redis":
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.CacheDriver)
	}
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}
	return data, nil
}

func observe(driver string, hit bool) bool {
	if hit {
		metrics.CacheHits.WithLabelValues(driver).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(driver).Inc()
	}
	return hit
}
