package checkout

import (
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/shopspring/decimal"
)

// Quote is what the payment screen shows before the cashier confirms
type Quote struct {
	Lines      int             `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Discount   decimal.Decimal `json:"discount"`
	Due        decimal.Decimal `json:"due"`
	Tendered   decimal.Decimal `json:"tendered"`
	Change     decimal.Decimal `json:"change"`
	Sufficient bool            `json:"sufficient"`
}

// Quote prices the current cart. A nil tendered is pre-filled with the amount due.
func (o *Orchestrator) Quote(tendered *decimal.Decimal, discount decimal.Decimal) (Quote, error) {
	if tendered != nil && tendered.IsNegative() {
		return Quote{}, ErrInvalidTendered
	}

	snap := o.cart.Snapshot()
	totals := pricing.Compute(snap.Lines)
	due, err := totals.Due(discount)
	if err != nil {
		return Quote{}, err
	}
	due = pricing.Round(due)

	paid := due
	if tendered != nil {
		paid = *tendered
	}

	rounded := totals.Rounded()
	return Quote{
		Lines:      len(snap.Lines),
		Subtotal:   rounded.Subtotal,
		Tax:        rounded.Tax,
		Total:      rounded.Total,
		Discount:   pricing.Round(discount),
		Due:        due,
		Tendered:   paid,
		Change:     pricing.Round(pricing.Change(paid, due)),
		Sufficient: pricing.Sufficient(paid, due),
	}, nil
}
