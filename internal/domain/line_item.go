package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in a cart. UnitPrice and TaxRate are captured
// when the product is first added and never change afterwards.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock_quantity"`
}

// NewLineItem captures price and tax rate from the product
func NewLineItem(p Product, quantity int) LineItem {
	return LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		UnitPrice: p.Price,
		TaxRate:   p.TaxRate,
		Quantity:  quantity,
		Stock:     p.Stock,
	}
}

// Net is unit price times quantity, unrounded
func (l LineItem) Net() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Tax is Net times the tax rate percentage, unrounded
func (l LineItem) Tax() decimal.Decimal {
	return l.Net().Mul(l.TaxRate).Div(decimal.NewFromInt(100))
}
