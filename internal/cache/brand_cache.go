package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"brandcatalog/internal/model"
)

const DefaultBrandTTL = 60 * time.Second

// BrandCache keeps single-brand reads in Redis. Writers delete the entry so
// the next read repopulates it.
type BrandCache struct {
	client redisv9.Cmdable
	ttl    time.Duration
}

func NewBrandCache(client redisv9.Cmdable, ttl time.Duration) *BrandCache {
	if ttl <= 0 {
		ttl = DefaultBrandTTL
	}
	return &BrandCache{client: client, ttl: ttl}
}

func (c *BrandCache) GetBrand(ctx context.Context, id uint) (*model.Brand, bool, error) {
	raw, err := c.client.Get(ctx, c.brandKey(id)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get brand failed: %w", err)
	}

	var brand model.Brand
	if err := json.Unmarshal(raw, &brand); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached brand failed: %w", err)
	}
	return &brand, true, nil
}

func (c *BrandCache) SetBrand(ctx context.Context, brand *model.Brand) error {
	payload, err := json.Marshal(brand)
	if err != nil {
		return fmt.Errorf("marshal brand cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.brandKey(brand.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set brand failed: %w", err)
	}
	return nil
}

func (c *BrandCache) DeleteBrand(ctx context.Context, id uint) error {
	if err := c.client.Del(ctx, c.brandKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete brand failed: %w", err)
	}
	return nil
}

func (c *BrandCache) brandKey(id uint) string {
	return fmt.Sprintf("brandcatalog:brand:%d", id)
}
