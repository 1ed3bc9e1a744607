package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

func (c *Client) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/barcode/"+url.PathEscape(barcode), nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}
