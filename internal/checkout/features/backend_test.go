package features

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory stand-in for the store's REST backend. It
// prices invoices, tracks stock and reconciles shifts the way the real one does.
type fakeBackend struct {
	mu              sync.Mutex
	products        map[string]*domain.Product
	customers       []domain.Customer
	invoices        []domain.Invoice
	shift           *domain.ShiftSession
	rejectInvoices  string
	refuseCustomers bool
	idempotency     map[string]*domain.Invoice
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products:    make(map[string]*domain.Product),
		idempotency: make(map[string]*domain.Invoice),
	}
}

func (b *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/products/{id}", b.getProduct)
	r.Get("/customers", b.searchCustomers)
	r.Post("/customers", b.createCustomer)
	r.Get("/shifts/current", b.currentShift)
	r.Post("/shifts/open", b.openShift)
	r.Post("/shifts/{id}/close", b.closeShift)
	r.Post("/invoices", b.createInvoice)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (b *fakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.products[chi.URLParam(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *fakeBackend) searchCustomers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := r.URL.Query().Get("search")
	found := make([]domain.Customer, 0)
	for _, c := range b.customers {
		if strings.Contains(c.Phone, q) || strings.Contains(c.Name, q) {
			found = append(found, c)
		}
	}
	writeJSON(w, http.StatusOK, found)
}

func (b *fakeBackend) createCustomer(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refuseCustomers {
		writeDetail(w, http.StatusBadRequest, "Customer registration is disabled")
		return
	}
	var in domain.CustomerCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c := domain.Customer{ID: fmt.Sprintf("cust-%d", len(b.customers)+1), Name: in.Name, Phone: in.Phone}
	b.customers = append(b.customers, c)
	writeJSON(w, http.StatusOK, c)
}

func (b *fakeBackend) currentShift(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shift == nil || b.shift.Status != domain.ShiftStatusOpen {
		writeDetail(w, http.StatusNotFound, "No open shift")
		return
	}
	writeJSON(w, http.StatusOK, b.shift)
}

func (b *fakeBackend) openShift(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shift != nil && b.shift.Status == domain.ShiftStatusOpen {
		writeDetail(w, http.StatusBadRequest, "You already have an open shift")
		return
	}
	var in backend.OpenShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.shift = &domain.ShiftSession{
		ID:             fmt.Sprintf("shift-%d", time.Now().UnixNano()),
		OperatorID:     "operator-1",
		Status:         domain.ShiftStatusOpen,
		OpeningBalance: in.OpeningBalance,
		OpenedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Notes:          in.Notes,
	}
	writeJSON(w, http.StatusOK, b.shift)
}

func (b *fakeBackend) closeShift(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shift == nil || b.shift.ID != chi.URLParam(r, "id") || b.shift.Status != domain.ShiftStatusOpen {
		writeDetail(w, http.StatusNotFound, "Shift not found or already closed")
		return
	}
	var in backend.CloseShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	expected := b.shift.OpeningBalance
	for _, inv := range b.invoices {
		if inv.PaymentMethod == domain.PaymentMethodCash && inv.ShiftID != nil && *inv.ShiftID == b.shift.ID {
			expected = expected.Add(inv.TotalAmount)
		}
	}
	actual := in.ActualCash
	diff := actual.Sub(expected)
	closedAt := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	b.shift.Status = domain.ShiftStatusClosed
	b.shift.ActualCash = &actual
	b.shift.ExpectedCash = &expected
	b.shift.Difference = &diff
	b.shift.ClosedAt = &closedAt
	writeJSON(w, http.StatusOK, b.shift)
}

func (b *fakeBackend) createInvoice(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rejectInvoices != "" {
		writeDetail(w, http.StatusBadRequest, b.rejectInvoices)
		return
	}
	key := r.Header.Get(backend.IdempotencyHeader)
	if inv, ok := b.idempotency[key]; ok && key != "" {
		writeJSON(w, http.StatusOK, inv)
		return
	}

	var req domain.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hundred := decimal.NewFromInt(100)
	inv := domain.Invoice{
		ID:             fmt.Sprintf("inv-%d", len(b.invoices)+1),
		InvoiceNumber:  fmt.Sprintf("INV-%06d", len(b.invoices)+1),
		InvoiceType:    req.InvoiceType,
		PaymentMethod:  req.PaymentMethod,
		CustomerID:     req.CustomerID,
		DiscountAmount: req.DiscountAmount,
		PaidAmount:     req.PaidAmount,
		CreatedAt:      time.Date(2026, 3, 1, 12, len(b.invoices), 0, 0, time.UTC),
	}
	if b.shift != nil && b.shift.Status == domain.ShiftStatusOpen {
		id := b.shift.ID
		inv.ShiftID = &id
	}
	for _, it := range req.Items {
		p, ok := b.products[it.ProductID]
		if !ok {
			writeDetail(w, http.StatusNotFound, "Product "+it.ProductID+" not found")
			return
		}
		if p.Stock < it.Quantity {
			writeDetail(w, http.StatusBadRequest, "Insufficient stock for "+p.Name)
			return
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		net := it.UnitPrice.Mul(qty)
		inv.Subtotal = inv.Subtotal.Add(net)
		inv.TaxAmount = inv.TaxAmount.Add(net.Mul(it.TaxRate).Div(hundred))
		inv.Items = append(inv.Items, domain.InvoiceItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			TotalPrice:  net,
		})
	}
	for _, it := range req.Items {
		b.products[it.ProductID].Stock -= it.Quantity
	}
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount).Round(2)
	inv.ChangeAmount = inv.PaidAmount.Sub(inv.TotalAmount)
	inv.User = &domain.InvoiceUser{ID: "operator-1", FullName: "Front Till"}

	b.invoices = append(b.invoices, inv)
	if key != "" {
		b.idempotency[key] = &inv
	}
	writeJSON(w, http.StatusOK, inv)
}

func (b *fakeBackend) customerByPhone(phone string) *domain.Customer {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.customers {
		if c.Phone == phone {
			c := c
			return &c
		}
	}
	return nil
}

func (b *fakeBackend) lastInvoice() *domain.Invoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.invoices) == 0 {
		return nil
	}
	inv := b.invoices[len(b.invoices)-1]
	return &inv
}
