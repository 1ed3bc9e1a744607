// Package catalog looks up products for the cart, serving repeat scans from
// a short-lived redis cache.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// lookupTimeout bounds a shared lookup, which outlives any single caller
const lookupTimeout = 10 * time.Second

// Source is the authoritative product lookup
type Source interface {
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
}

type Catalog struct {
	source Source
	cache  ProductCache
	sfg    singleflight.Group // one backend call per key at a time
	log    *zap.Logger
}

func New(source Source, cache ProductCache, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		source: source,
		cache:  cache,
		log:    log,
	}
}

func (c *Catalog) ByID(ctx context.Context, id string) (*domain.Product, error) {
	return c.lookup(ctx, "id:"+id,
		func(ctx context.Context) (*domain.Product, error) { return c.cache.Get(ctx, id) },
		func(ctx context.Context) (*domain.Product, error) { return c.source.ProductByID(ctx, id) })
}

func (c *Catalog) ByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return c.lookup(ctx, "barcode:"+barcode,
		func(ctx context.Context) (*domain.Product, error) { return c.cache.GetByBarcode(ctx, barcode) },
		func(ctx context.Context) (*domain.Product, error) { return c.source.ProductByBarcode(ctx, barcode) })
}

// Evict drops products whose stock changed, e.g. after a sale.
func (c *Catalog) Evict(ctx context.Context, productIDs ...string) error {
	return c.cache.Delete(ctx, productIDs...)
}

func (c *Catalog) lookup(
	ctx context.Context,
	key string,
	fromCache func(context.Context) (*domain.Product, error),
	fromSource func(context.Context) (*domain.Product, error),
) (*domain.Product, error) {
	ch := c.sfg.DoChan(key, func() (interface{}, error) {
		// callers share the result, so one caller leaving must not cancel it
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		product, err := fromCache(ctx)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("product cache get failed", zap.String("key", key), zap.Error(err))
		}

		product, err = fromSource(ctx)
		if backend.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}

		go func(p domain.Product) {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := c.cache.Set(setCtx, &p); errSet != nil {
				c.log.Warn("product cache set failed", zap.String("product_id", p.ID), zap.Error(errSet))
			}
		}(*product)

		return product, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := *res.Val.(*domain.Product)
		return &p, nil
	}
}
