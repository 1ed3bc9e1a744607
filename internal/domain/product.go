package domain

import "github.com/shopspring/decimal"

// Product is the catalog view returned by the backend. Stock is a snapshot
// taken at lookup time and may already be stale when it is used.
type Product struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Barcode string          `json:"barcode"`
	Price   decimal.Decimal `json:"selling_price"`
	TaxRate decimal.Decimal `json:"tax_rate"`
	Stock   int             `json:"stock_quantity"`
}

// InStock reports whether at least one unit was available at lookup time
func (p Product) InStock() bool {
	return p.Stock > 0
}
