package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/receipt"
	"github.com/fjod/go_cart/pos-terminal/internal/shift"
	"github.com/shopspring/decimal"
)

type ProductsMock struct {
	byID map[string]domain.Product
	err  error
}

func newProductsMock(products ...domain.Product) *ProductsMock {
	m := &ProductsMock{byID: make(map[string]domain.Product)}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *ProductsMock) ByID(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *ProductsMock) ByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.byID {
		if p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

type ShiftsMock struct {
	session      *domain.ShiftSession
	history      []*domain.ShiftSession
	err          error
	gotBalance   decimal.Decimal
	gotCash      *decimal.Decimal
	gotNotes     string
	historyLimit int
}

func (m *ShiftsMock) Current(_ context.Context) (*domain.ShiftSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.session == nil {
		return nil, shift.ErrNoActiveShift
	}
	return m.session, nil
}

func (m *ShiftsMock) Open(_ context.Context, openingBalance decimal.Decimal, notes string) (*domain.ShiftSession, error) {
	m.gotBalance = openingBalance
	m.gotNotes = notes
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *ShiftsMock) Close(_ context.Context, actualCash *decimal.Decimal, notes string) (*domain.ShiftSession, error) {
	m.gotCash = actualCash
	m.gotNotes = notes
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *ShiftsMock) History(_ context.Context, limit int) ([]*domain.ShiftSession, error) {
	m.historyLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

type CheckoutMock struct {
	result   *checkout.Result
	quote    checkout.Quote
	err      error
	quoteErr error
	got      checkout.Request

	gotTendered *decimal.Decimal
	gotDiscount decimal.Decimal
}

func (m *CheckoutMock) Checkout(_ context.Context, req checkout.Request) (*checkout.Result, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *CheckoutMock) Quote(tendered *decimal.Decimal, discount decimal.Decimal) (checkout.Quote, error) {
	m.gotTendered = tendered
	m.gotDiscount = discount
	if m.quoteErr != nil {
		return checkout.Quote{}, m.quoteErr
	}
	return m.quote, nil
}

type RendererMock struct{}

func (RendererMock) Render(inv *domain.Invoice) []byte {
	return []byte("RECEIPT " + inv.InvoiceNumber)
}

type ArchiveMock struct {
	records map[string]receipt.Record
}

func (m ArchiveMock) Get(_ context.Context, invoiceNumber string) (*receipt.Record, error) {
	rec, ok := m.records[invoiceNumber]
	if !ok {
		return nil, receipt.ErrReceiptNotFound
	}
	return &rec, nil
}

type InvoicesMock struct {
	invoices map[string]*domain.Invoice
	err      error
}

func (m InvoicesMock) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	inv, ok := m.invoices[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: http.StatusNotFound, Detail: "Invoice not found"}
	}
	return inv, nil
}
