package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewRedisCache keeps products for ttl plus up to a fifth of ttl of jitter.
// Cached stock is a snapshot, so ttl should stay short.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product domain.Product
	if err2 := json.Unmarshal(data, &product); err2 != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err2)
	}

	return &product, nil
}

// GetByBarcode resolves the barcode index and then the product entry; a miss
// on either is a cache miss.
func (r RedisCache) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	id, err := r.client.Get(ctx, barcodeKey(barcode)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return r.Get(ctx, id)
}

func (r RedisCache) Set(ctx context.Context, product *domain.Product) error {
	jsonProduct, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	ttl := r.baseTTL + jitter(r.baseTTL)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, productKey(product.ID), jsonProduct, ttl)
	if product.Barcode != "" {
		// barcode -> id index, kept longer than the entry
		pipe.Set(ctx, barcodeKey(product.Barcode), product.ID, 2*ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func jitter(base time.Duration) time.Duration {
	max := int64(base / 5)
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(max))
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

func barcodeKey(barcode string) string {
	return fmt.Sprintf("barcode:%s", barcode)
}
