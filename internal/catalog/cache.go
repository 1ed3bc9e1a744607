package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

type ProductCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productIDs ...string) error
}

var ErrCacheMiss = errors.New("cache miss")
