// Package checkout runs the checkout protocol of the terminal: preconditions,
// customer resolution, payment validation, invoice submission and the
// post-commit bookkeeping. Only step 4 talks to the system of record; every
// failure before it leaves the cart untouched.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Request is the payment entry for one checkout attempt
type Request struct {
	CustomerPhone string
	PaymentMethod domain.PaymentMethod
	Tendered      decimal.Decimal
	Discount      decimal.Decimal
	Notes         string
}

func (r Request) validate() error {
	if !r.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, r.PaymentMethod)
	}
	if r.Tendered.IsNegative() {
		return ErrInvalidTendered
	}
	if r.Discount.IsNegative() {
		return pricing.ErrInvalidDiscount
	}
	return nil
}

// Result of a committed sale. Unconfirmed is set when the backend accepted the
// invoice but its response could not be read: Invoice and Receipt are then
// empty and the operator must check the sale on the backend.
type Result struct {
	CheckoutID  string
	Invoice     *domain.Invoice
	Receipt     []byte
	Change      decimal.Decimal
	Customer    *domain.Customer
	Warnings    []string
	Unconfirmed bool
}

// pendingAttempt is a submission whose outcome is unknown. Retrying the same
// cart revision reuses its key.
type pendingAttempt struct {
	revision uint64
	key      string
}

// Deps are the collaborators of the orchestrator. Receipts, Events and
// Catalog are optional.
type Deps struct {
	Cart      *cart.Cart
	Shifts    Shifts
	Customers Customers
	Invoices  Invoices
	Renderer  Renderer
	Receipts  ReceiptSink
	Events    EventSink
	Catalog   CacheEvicter
}

type Orchestrator struct {
	cart       *cart.Cart
	shifts     Shifts
	customers  Customers
	invoices   Invoices
	renderer   Renderer
	receipts   ReceiptSink
	events     EventSink
	catalog    CacheEvicter
	terminalID string

	// busy admits one checkout at a time; pending is only touched while it is held
	busy    atomic.Bool
	pending *pendingAttempt
	newKey  func() string
	now    func() time.Time
	log    *zap.Logger
}

func New(deps Deps, terminalID string, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cart:       deps.Cart,
		shifts:     deps.Shifts,
		customers:  deps.Customers,
		invoices:   deps.Invoices,
		renderer:   deps.Renderer,
		receipts:   deps.Receipts,
		events:     deps.Events,
		catalog:    deps.Catalog,
		terminalID: terminalID,
		newKey:     uuid.NewString,
		now:        time.Now,
		log:        log,
	}
}

// Checkout commits the current cart as a sale.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer o.busy.Store(false)

	if o.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	session, err := o.shifts.RequireOpen(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	res.Customer = o.resolveCustomer(ctx, req.CustomerPhone, res, o.log)

	snap := o.cart.Hold()
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}
	res.CheckoutID = o.attemptKey(snap.Revision)
	log := o.log.With(zap.String("checkout_id", res.CheckoutID))

	due, err := pricing.Compute(snap.Lines).Due(req.Discount)
	if err != nil {
		return nil, err
	}
	due = pricing.Round(due)
	if !pricing.Sufficient(req.Tendered, due) {
		return nil, &PaymentError{Due: due, Tendered: req.Tendered}
	}

	inv, err := o.invoices.CreateInvoice(ctx, buildInvoiceRequest(snap, req, res.Customer), res.CheckoutID)
	switch {
	case err == nil:
		o.pending = nil
	case errors.Is(err, backend.ErrUnreadableResponse):
		o.pending = nil
		res.Change = pricing.Round(pricing.Change(req.Tendered, due))
		o.completeUnconfirmed(context.WithoutCancel(ctx), session, snap, req, due, res, err, log)
		return res, nil
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			o.pending = nil
		} else {
			o.pending = &pendingAttempt{revision: snap.Revision, key: res.CheckoutID}
		}
		log.Warn("invoice submission failed", zap.Error(err))
		return nil, &SubmissionError{Err: err}
	}
	res.Invoice = inv
	res.Change = pricing.Round(pricing.Change(req.Tendered, due))

	o.complete(context.WithoutCancel(ctx), session, snap, res, log)
	return res, nil
}

// attemptKey reuses the key of an unresolved submission of the same cart
// revision, so a retry after a lost response is deduplicated by the backend.
func (o *Orchestrator) attemptKey(revision uint64) string {
	if o.pending != nil && o.pending.revision == revision {
		return o.pending.key
	}
	return o.newKey()
}

func buildInvoiceRequest(snap cart.Snapshot, req Request, customer *domain.Customer) domain.InvoiceRequest {
	items := make([]domain.InvoiceItemRequest, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, domain.InvoiceItemRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: pricing.Round(l.UnitPrice),
			TaxRate:   l.TaxRate,
			Discount:  decimal.Zero,
		})
	}

	invReq := domain.InvoiceRequest{
		InvoiceType:    domain.InvoiceTypeSale,
		PaymentMethod:  req.PaymentMethod,
		PaidAmount:     pricing.Round(req.Tendered),
		DiscountAmount: pricing.Round(req.Discount),
		Items:          items,
		Notes:          req.Notes,
	}
	if customer != nil {
		id := customer.ID
		invReq.CustomerID = &id
	}
	return invReq
}

// warn records a post-commit or customer failure that does not fail the sale
func (o *Orchestrator) warn(res *Result, log *zap.Logger, msg string, err error) {
	res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", msg, err))
	log.Warn(msg, zap.Error(err))
}
