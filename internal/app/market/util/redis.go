package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	productsCacheKey    = "products:all"
	productsCachePrefix = "products"
	serviceName         = "greenbasket"
)

// ProductCache кеширует список товаров в Redis.
// Каталог read-mostly, поэтому кеш инвалидируется только при
// пересчёте рейтингов и по TTL.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

// NewRedisClient подключается к Redis с проверкой соединения
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *ProductCache) SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := c.client.Set(ctx, productsCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set products in cache: %w", err)
	}

	return nil
}

// GetProducts возвращает закешированный список товаров.
// (nil, nil) означает промах кеша.
func (c *ProductCache) GetProducts(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.client.Get(ctx, productsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, productsCachePrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get products from cache: %w", err)
	}

	var products []entity.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	metrics.RecordCacheHit(serviceName, productsCachePrefix)
	return products, nil
}

func (c *ProductCache) DeleteProducts(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := c.client.Del(ctx, productsCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete products from cache: %w", err)
	}
	return nil
}
