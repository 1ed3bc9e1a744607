// Package pricing computes cart totals. Values are kept at full precision and
// rounded to two places only through Round, at presentation and submission.
package pricing

import (
	"errors"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidDiscount = errors.New("discount must be between zero and the cart total")

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute sums net and tax over all lines. Total is always Subtotal + Tax.
func Compute(lines []domain.LineItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Net())
		tax = tax.Add(l.Tax())
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Due is the amount the customer owes after an order-level discount.
func (t Totals) Due(discount decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() || discount.GreaterThan(t.Total) {
		return decimal.Zero, ErrInvalidDiscount
	}
	return t.Total.Sub(discount), nil
}

// Rounded returns the presented copy of the totals
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: Round(t.Subtotal),
		Tax:      Round(t.Tax),
		Total:    Round(t.Total),
	}
}

// Change is tendered minus due. A negative result means the payment is short.
func Change(tendered, due decimal.Decimal) decimal.Decimal {
	return tendered.Sub(due)
}

// Sufficient is the checkout guard: tendered must cover due.
func Sufficient(tendered, due decimal.Decimal) bool {
	return !Change(tendered, due).IsNegative()
}

// Round applies the two-place rounding used on receipts and invoice submissions.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
