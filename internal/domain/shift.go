package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

func (s ShiftStatus) IsTerminal() bool {
	return s == ShiftStatusClosed
}

// CanTransitionTo allows open -> closed only; a closed session never changes again.
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	return s == ShiftStatusOpen && next == ShiftStatusClosed
}

func (s ShiftStatus) String() string {
	return string(s)
}

// ShiftSession is a till session bounded by an explicit open and close.
// ExpectedCash and Difference are reported data; nothing enforces them.
type ShiftSession struct {
	ID             string           `json:"id"`
	OperatorID     string           `json:"user_id"`
	Status         ShiftStatus      `json:"status"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	OpenedAt       time.Time        `json:"opened_at"`
	ActualCash     *decimal.Decimal `json:"actual_cash,omitempty"`
	ExpectedCash   *decimal.Decimal `json:"expected_cash,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	Notes          string           `json:"notes,omitempty"`

	// local tally kept by the terminal, not part of the backend payload
	SalesCount int             `json:"sales_count"`
	CashSales  decimal.Decimal `json:"cash_sales"`
}

func (s *ShiftSession) IsOpen() bool {
	return s != nil && s.Status == ShiftStatusOpen
}

// LocalExpectedCash is the opening balance plus cash sales recorded on this terminal
func (s *ShiftSession) LocalExpectedCash() decimal.Decimal {
	return s.OpeningBalance.Add(s.CashSales)
}
