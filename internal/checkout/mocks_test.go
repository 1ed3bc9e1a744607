package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

type mockShifts struct {
	mu         sync.Mutex
	session    *domain.ShiftSession
	requireErr error
	recordErr  error
	recorded   []*domain.Invoice
}

func (m *mockShifts) RequireOpen(_ context.Context) (*domain.ShiftSession, error) {
	if m.requireErr != nil {
		return nil, m.requireErr
	}
	return m.session, nil
}

func (m *mockShifts) RecordSale(ctx context.Context, inv *domain.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, inv)
	return m.recordErr
}

type mockCustomers struct {
	found       []domain.Customer
	searchErr   error
	createErr   error
	searches    []string
	created     []domain.CustomerCreate
	nextCreated int
}

func (m *mockCustomers) SearchCustomers(_ context.Context, query string) ([]domain.Customer, error) {
	m.searches = append(m.searches, query)
	return m.found, m.searchErr
}

func (m *mockCustomers) CreateCustomer(_ context.Context, in domain.CustomerCreate) (*domain.Customer, error) {
	m.created = append(m.created, in)
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextCreated++
	return &domain.Customer{ID: fmt.Sprintf("cust-new-%d", m.nextCreated), Name: in.Name, Phone: in.Phone}, nil
}

// mockInvoices accepts every request and prices it the way the backend does.
// started and release let a test hold a submission in flight.
type mockInvoices struct {
	mu       sync.Mutex
	err      error
	requests []domain.InvoiceRequest
	keys     []string
	started  chan struct{}
	release  chan struct{}
}

func (m *mockInvoices) CreateInvoice(_ context.Context, req domain.InvoiceRequest, key string) (*domain.Invoice, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.keys = append(m.keys, key)
	n := len(m.requests)
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return invoiceFor(req, n), nil
}

func (m *mockInvoices) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func invoiceFor(req domain.InvoiceRequest, n int) *domain.Invoice {
	hundred := decimal.NewFromInt(100)
	inv := &domain.Invoice{
		ID:             fmt.Sprintf("inv-%d", n),
		InvoiceNumber:  fmt.Sprintf("INV-%04d", n),
		InvoiceType:    req.InvoiceType,
		PaymentMethod:  req.PaymentMethod,
		CustomerID:     req.CustomerID,
		DiscountAmount: req.DiscountAmount,
		PaidAmount:     req.PaidAmount,
		CreatedAt:      time.Date(2026, 3, 1, 10, 0, n, 0, time.UTC),
	}
	for _, it := range req.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		net := it.UnitPrice.Mul(qty)
		inv.Subtotal = inv.Subtotal.Add(net)
		inv.TaxAmount = inv.TaxAmount.Add(net.Mul(it.TaxRate).Div(hundred))
		inv.Items = append(inv.Items, domain.InvoiceItem{
			ProductID:   it.ProductID,
			ProductName: "product " + it.ProductID,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			TotalPrice:  net,
		})
	}
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount).Round(2)
	inv.ChangeAmount = inv.PaidAmount.Sub(inv.TotalAmount)
	return inv
}

type stubRenderer struct{}

func (stubRenderer) Render(inv *domain.Invoice) []byte {
	return []byte("receipt " + inv.InvoiceNumber)
}

type recordingSink struct {
	docs [][]byte
	err  error
}

func (s *recordingSink) Print(_ context.Context, _ *domain.Invoice, doc []byte) error {
	s.docs = append(s.docs, doc)
	return s.err
}

type recordingEvents struct {
	events []domain.SaleCommitted
	err    error
}

func (r *recordingEvents) SaleCommitted(_ context.Context, evt domain.SaleCommitted) error {
	r.events = append(r.events, evt)
	return r.err
}

type recordingEvicter struct {
	ids []string
	err error
}

func (r *recordingEvicter) Evict(_ context.Context, ids ...string) error {
	r.ids = append(r.ids, ids...)
	return r.err
}
