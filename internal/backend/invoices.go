package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// CreateInvoice submits a sale. The backend assigns the invoice number and
// decrements stock; once it answers 2xx the sale is committed.
func (c *Client) CreateInvoice(ctx context.Context, in domain.InvoiceRequest, idempotencyKey string) (*domain.Invoice, error) {
	var inv domain.Invoice
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	if err := c.do(ctx, http.MethodPost, "/invoices", in, &inv, headers); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices/"+url.PathEscape(id), nil, &inv, nil); err != nil {
		return nil, err
	}
	return &inv, nil
}
