package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/product-catalog/models"
	"gitlab.connectwisedev.com/product-catalog/pkg/logger"
)

const allProductIDsKey = "all_product_ids"

// NewRedisClient connects to addr and verifies the connection with a ping
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("REDIS_ADDR environment variable not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0, // Default DB
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", "addr", addr)
	return client, nil
}

// ProductCache stores enriched products under product:<id> and tracks the
// known ids in a set. A nil *ProductCache is a disabled cache: reads miss
// and writes do nothing.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache wraps client. Entries expire after ttl; zero keeps them forever.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns the cached product. The bool is false on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (models.PublicProduct, bool, error) {
	var p models.PublicProduct
	if c == nil {
		return p, false, nil
	}

	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("failed to get product %s from Redis: %w", id, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, false, fmt.Errorf("failed to unmarshal cached product %s: %w", id, err)
	}
	return p, true, nil
}

// Set caches one product.
func (c *ProductCache) Set(ctx context.Context, p models.PublicProduct) error {
	return c.SetMany(ctx, []models.PublicProduct{p})
}

// SetMany caches products in one pipeline round trip.
func (c *ProductCache) SetMany(ctx context.Context, products []models.PublicProduct) error {
	if c == nil || len(products) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	ids := make([]interface{}, 0, len(products))
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal product %s for cache: %w", p.ID, err)
		}
		pipe.Set(ctx, productKey(p.ID), data, c.ttl)
		ids = append(ids, p.ID)
	}
	pipe.SAdd(ctx, allProductIDsKey, ids...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for cache population: %w", err)
	}
	return nil
}

// KnownIDs returns every product id that has been cached so far.
func (c *ProductCache) KnownIDs(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	ids, err := c.client.SMembers(ctx, allProductIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", allProductIDsKey, err)
	}
	return ids, nil
}

// Close closes the Redis connection
func (c *ProductCache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		logger.Info("Redis connection closed")
	}
}
