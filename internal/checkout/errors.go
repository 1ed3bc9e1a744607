package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress   = errors.New("a checkout is already in progress")
	ErrInsufficientPayment  = errors.New("paid amount is less than the amount due")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidTendered      = errors.New("tendered amount must not be negative")
	ErrSubmissionFailed     = errors.New("invoice submission failed")
)

// PaymentError reports a short payment. It matches ErrInsufficientPayment.
type PaymentError struct {
	Due      decimal.Decimal
	Tendered decimal.Decimal
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("paid %s, due %s", e.Tendered.StringFixed(2), e.Due.StringFixed(2))
}

func (e *PaymentError) Unwrap() error {
	return ErrInsufficientPayment
}

// SubmissionError carries the backend's refusal. Its message is the backend's
// message unchanged; it matches ErrSubmissionFailed and the underlying error.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}
