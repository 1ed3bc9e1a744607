package checkout

import (
	"context"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

type Shifts interface {
	RequireOpen(ctx context.Context) (*domain.ShiftSession, error)
	RecordSale(ctx context.Context, inv *domain.Invoice) error
}

type Customers interface {
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, in domain.CustomerCreate) (*domain.Customer, error)
}

type Invoices interface {
	CreateInvoice(ctx context.Context, req domain.InvoiceRequest, idempotencyKey string) (*domain.Invoice, error)
}

type Renderer interface {
	Render(inv *domain.Invoice) []byte
}

// ReceiptSink is satisfied by receipt.Sink
type ReceiptSink interface {
	Print(ctx context.Context, inv *domain.Invoice, doc []byte) error
}

// EventSink records committed sales for publication
type EventSink interface {
	SaleCommitted(ctx context.Context, evt domain.SaleCommitted) error
}

// CacheEvicter drops cached products whose stock changed
type CacheEvicter interface {
	Evict(ctx context.Context, productIDs ...string) error
}
