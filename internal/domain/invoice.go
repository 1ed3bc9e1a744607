package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodElectronic PaymentMethod = "electronic"
	PaymentMethodMixed      PaymentMethod = "mixed"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodElectronic, PaymentMethodMixed:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

type InvoiceType string

const InvoiceTypeSale InvoiceType = "sale"

// InvoiceItemRequest carries the price and tax captured in the cart
type InvoiceItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Discount  decimal.Decimal `json:"discount"`
}

// InvoiceRequest is the submission sent to the backend. It is built once per
// checkout attempt and not modified afterwards.
type InvoiceRequest struct {
	InvoiceType    InvoiceType          `json:"invoice_type"`
	PaymentMethod  PaymentMethod        `json:"payment_method"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	CustomerID     *string              `json:"customer_id"`
	Items          []InvoiceItemRequest `json:"items"`
	Notes          string               `json:"notes,omitempty"`
}

type InvoiceItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type InvoiceUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Invoice is the committed transaction as returned by the backend, which
// assigns InvoiceNumber and is the system of record for the sale.
type Invoice struct {
	ID             string          `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceType    InvoiceType     `json:"invoice_type"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	CustomerID     *string         `json:"customer_id,omitempty"`
	ShiftID        *string         `json:"shift_id,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	ChangeAmount   decimal.Decimal `json:"change_amount"`
	Items          []InvoiceItem   `json:"items"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	User           *InvoiceUser    `json:"user,omitempty"`
}

// ProductIDs lists the products sold on the invoice, in item order
func (i *Invoice) ProductIDs() []string {
	ids := make([]string, 0, len(i.Items))
	for _, item := range i.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
