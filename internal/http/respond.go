package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/fjod/go_cart/pos-terminal/internal/receipt"
	"github.com/fjod/go_cart/pos-terminal/internal/shift"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order with errors.Is
var errorTable = []errorMapping{
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{shift.ErrActualCashRequired, http.StatusBadRequest, "actual_cash_required"},
	{shift.ErrInvalidActualCash, http.StatusBadRequest, "invalid_actual_cash"},
	{shift.ErrInvalidOpeningBalance, http.StatusBadRequest, "invalid_opening_balance"},
	{checkout.ErrInvalidPaymentMethod, http.StatusBadRequest, "invalid_payment_method"},
	{checkout.ErrInvalidTendered, http.StatusBadRequest, "invalid_tendered"},
	{pricing.ErrInvalidDiscount, http.StatusBadRequest, "invalid_discount"},

	{cart.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{catalog.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{receipt.ErrReceiptNotFound, http.StatusNotFound, "receipt_not_found"},
	{shift.ErrSessionNotFound, http.StatusNotFound, "shift_not_found"},

	{checkout.ErrEmptyCart, http.StatusConflict, "empty_cart"},
	{checkout.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress"},
	{shift.ErrNoActiveShift, http.StatusConflict, "no_active_shift"},
	{shift.ErrSessionClosed, http.StatusConflict, "shift_closed"},
	{cart.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{cart.ErrStockExceeded, http.StatusConflict, "stock_exceeded"},

	{checkout.ErrInsufficientPayment, http.StatusUnprocessableEntity, "insufficient_payment"},
}

// writeError maps domain and backend errors to one HTTP response. Backend
// messages are passed through unchanged.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			respondError(w, m.status, m.code, err.Error())
			return
		}
	}

	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusUnprocessableEntity
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			status = http.StatusNotFound
		case apiErr.StatusCode >= 500:
			status = http.StatusBadGateway
		}
		respondJSON(w, status, ErrorResponse{
			Error:   apiErr.Error(),
			Code:    "backend_rejected",
			Details: fmt.Sprintf("backend status %d", apiErr.StatusCode),
		})
	case errors.Is(err, backend.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "backend_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		log.Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondText(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
