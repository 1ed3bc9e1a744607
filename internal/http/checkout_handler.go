package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
	Quote(tendered *decimal.Decimal, discount decimal.Decimal) (checkout.Quote, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(svc CheckoutService, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		checkout: svc,
		timeout:  timeout,
		log:      log,
	}
}

type CheckoutRequest struct {
	CustomerPhone string           `json:"customer_phone,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Tendered      *decimal.Decimal `json:"tendered,omitempty"`
	Discount      decimal.Decimal  `json:"discount"`
	Notes         string           `json:"notes,omitempty"`
}

type CheckoutResponse struct {
	CheckoutID string           `json:"checkout_id"`
	Invoice    *domain.Invoice  `json:"invoice"`
	Change     decimal.Decimal  `json:"change"`
	Customer   *domain.Customer `json:"customer,omitempty"`
	Receipt    string           `json:"receipt"`
	Warnings   []string         `json:"warnings,omitempty"`
	// Unconfirmed sales were accepted by the backend without a readable
	// invoice; Invoice is null and Receipt empty.
	Unconfirmed bool `json:"unconfirmed,omitempty"`
}

// GetQuote handles GET /api/v1/checkout/quote?tendered=&discount=
func (h *CheckoutHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tendered *decimal.Decimal
	if raw := q.Get("tendered"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "tendered must be a decimal amount")
			return
		}
		tendered = &d
	}
	discount := decimal.Zero
	if raw := q.Get("discount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "discount must be a decimal amount")
			return
		}
		discount = d
	}

	quote, err := h.checkout.Quote(tendered, discount)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	// omitted tendered pays the exact amount due
	if req.Tendered == nil {
		quote, err := h.checkout.Quote(nil, req.Discount)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		req.Tendered = &quote.Due
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.checkout.Checkout(ctx, checkout.Request{
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Tendered:      *req.Tendered,
		Discount:      req.Discount,
		Notes:         req.Notes,
	})
	if err != nil {
		h.log.Info("checkout refused",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		writeError(w, h.log, err)
		return
	}

	status := http.StatusCreated
	if res.Unconfirmed {
		status = http.StatusAccepted
	}
	respondJSON(w, status, CheckoutResponse{
		CheckoutID:  res.CheckoutID,
		Invoice:     res.Invoice,
		Change:      res.Change,
		Customer:    res.Customer,
		Receipt:     string(res.Receipt),
		Warnings:    res.Warnings,
		Unconfirmed: res.Unconfirmed,
	})
}
