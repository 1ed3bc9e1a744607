package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// SearchCustomers matches name or phone on the backend side
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	var customers []domain.Customer
	path := "/customers?search=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &customers, nil); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in domain.CustomerCreate) (*domain.Customer, error) {
	var customer domain.Customer
	if err := c.do(ctx, http.MethodPost, "/customers", in, &customer, nil); err != nil {
		return nil, err
	}
	return &customer, nil
}
