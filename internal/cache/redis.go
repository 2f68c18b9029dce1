package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/osamo/dreamshops/internal/domain"
)

const (
	keyPrefix = "dreamshops:product:"
	scanBatch = 500
)

func productKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// RedisProductCache implements ProductCache using Redis with a fixed TTL.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewRedisProductCache creates a new Redis-backed product cache.
func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "product_cache_hits_total",
			Help: "Total number of product cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "product_cache_misses_total",
			Help: "Total number of product cache misses",
		}),
	}
}

// Collectors returns the cache's Prometheus collectors for registration.
func (c *RedisProductCache) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.hits, c.misses}
}

// Get retrieves a product by id from Redis.
func (c *RedisProductCache) Get(ctx context.Context, id int64) (*domain.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Inc()
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	c.hits.Inc()
	return &p, nil
}

// Set stores a product in Redis with the configured TTL.
func (c *RedisProductCache) Set(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}

// Invalidate removes the given products from Redis.
func (c *RedisProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del products: %w", err)
	}

	return nil
}

// InvalidateAll removes every cached product, scanning the key space in
// batches rather than blocking Redis with KEYS.
func (c *RedisProductCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del products: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan products: %w", err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del products: %w", err)
		}
	}

	return nil
}
