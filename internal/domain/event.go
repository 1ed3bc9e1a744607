package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventSaleCommitted = "sale.committed"
	EventShiftOpened   = "shift.opened"
	EventShiftClosed   = "shift.closed"
)

type SoldItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SaleCommitted is published for every invoice the backend accepted from this terminal
type SaleCommitted struct {
	CheckoutID    string          `json:"checkout_id"`
	TerminalID    string          `json:"terminal_id"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ShiftID       string          `json:"shift_id,omitempty"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []SoldItem      `json:"items"`
	CommittedAt   time.Time       `json:"committed_at"`
}

// ShiftChanged is published when a shift opens or closes on this terminal
type ShiftChanged struct {
	ShiftID        string           `json:"shift_id"`
	TerminalID     string           `json:"terminal_id"`
	OperatorID     string           `json:"operator_id"`
	Status         ShiftStatus      `json:"status"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ActualCash     *decimal.Decimal `json:"actual_cash,omitempty"`
	ExpectedCash   *decimal.Decimal `json:"expected_cash,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	At             time.Time        `json:"at"`
}
