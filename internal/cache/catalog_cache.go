package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"cdr-backend-V1.0/internal/model"
)

const catalogKey = "cdr:catalog:domains"

// CatalogCache keeps the (static, read-heavy) question catalog in Redis.
// A miss or any Redis failure just means the caller falls through to the
// database.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetDomains returns the cached catalog, or (nil, nil) on a miss.
func (c *CatalogCache) GetDomains(ctx context.Context) ([]model.Domain, error) {
	data, err := c.client.Get(ctx, catalogKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var domains []model.Domain
	if err := json.Unmarshal([]byte(data), &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

func (c *CatalogCache) SetDomains(ctx context.Context, domains []model.Domain) error {
	data, err := json.Marshal(domains)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}

// Invalidate drops the cached catalog, used after a CLI import.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
