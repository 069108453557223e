package cache

import (
	"context"
	"encoding/json"
	"errors"
	"eshop/models"
	"fmt"
	"github.com/redis/go-redis/v9"
	"math/rand"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// 商品快取，以商品ID為key
type ProductCache interface {
	Get(ctx context.Context, productID string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, productID string) error
}

type RedisProductCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisProductCache{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisProductCache) Get(ctx context.Context, productID string) (*models.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &product, nil
}

func (r *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	//TTL加上隨機時間避免同時失效
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/3) + 1))
	if err := r.client.Set(ctx, cacheKey(product.ID), productJSON, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisProductCache) Delete(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, cacheKey(productID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// 未啟用Redis時使用
type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, string) (*models.Product, error) {
	return nil, ErrCacheMiss
}

func (NoopProductCache) Set(context.Context, *models.Product) error { return nil }

func (NoopProductCache) Delete(context.Context, string) error { return nil }
