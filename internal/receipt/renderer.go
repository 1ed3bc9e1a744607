// Package receipt turns a committed invoice into the printable receipt and
// hands it to the configured sinks.
package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	DefaultWidth = 40
	minWidth     = 24
	timeLayout   = "2006-01-02 15:04:05 UTC"
)

// Header is the store identity printed at the top of every receipt
type Header struct {
	StoreName string
	Address   string
	Phone     string
	TaxID     string
}

type Renderer struct {
	Header   Header
	Currency string
	Width    int
	// Operator is printed when the invoice carries no user
	Operator string
	Footer   []string
}

func NewRenderer(header Header, currency string, width int, operator string) *Renderer {
	if width < minWidth {
		width = DefaultWidth
	}
	return &Renderer{
		Header:   header,
		Currency: currency,
		Width:    width,
		Operator: operator,
		Footer:   []string{"Thank you for your purchase!"},
	}
}

// Render produces the receipt text. The output depends only on the invoice
// and the renderer settings, so equal invoices render byte-identical.
func (r *Renderer) Render(inv *domain.Invoice) []byte {
	width := r.Width
	if width < minWidth {
		width = DefaultWidth
	}
	double := strings.Repeat("=", width)
	single := strings.Repeat("-", width)

	var b bytes.Buffer
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(double)
	if r.Header.StoreName != "" {
		line(center(r.Header.StoreName, width))
	}
	if r.Header.Address != "" {
		line(center(r.Header.Address, width))
	}
	if r.Header.Phone != "" {
		line(center("Tel: "+r.Header.Phone, width))
	}
	if r.Header.TaxID != "" {
		line(center("Tax ID: "+r.Header.TaxID, width))
	}
	line(double)

	line("Invoice: " + inv.InvoiceNumber)
	line("Date: " + inv.CreatedAt.UTC().Format(timeLayout))
	line("Cashier: " + r.operator(inv))
	if inv.CustomerID != nil && *inv.CustomerID != "" {
		line("Customer: " + *inv.CustomerID)
	}
	line(single)

	for _, item := range inv.Items {
		line(item.ProductName)
		detail := fmt.Sprintf("%s x %s", item.Quantity.String(), amount(item.UnitPrice))
		line(row("  "+detail, amount(lineTotal(item)), width))
	}
	line(single)

	line(row("Subtotal", r.money(inv.Subtotal), width))
	line(row("Tax", r.money(inv.TaxAmount), width))
	if !inv.DiscountAmount.IsZero() {
		line(row("Discount", "-"+r.money(inv.DiscountAmount), width))
	}
	line(single)
	line(row("TOTAL", r.money(inv.TotalAmount), width))
	line(row("Paid", r.money(inv.PaidAmount), width))
	line(row("Change", r.money(inv.ChangeAmount), width))
	line(row("Payment", inv.PaymentMethod.String(), width))
	line(double)
	for _, f := range r.Footer {
		line(center(f, width))
	}
	line(double)

	return b.Bytes()
}

func (r *Renderer) operator(inv *domain.Invoice) string {
	if inv.User != nil && inv.User.FullName != "" {
		return inv.User.FullName
	}
	if r.Operator != "" {
		return r.Operator
	}
	return "System"
}

func (r *Renderer) money(d decimal.Decimal) string {
	if r.Currency == "" {
		return amount(d)
	}
	return amount(d) + " " + r.Currency
}

func amount(d decimal.Decimal) string {
	return pricing.Round(d).StringFixed(2)
}

// lineTotal prefers the backend's figure and falls back to qty x unit
func lineTotal(item domain.InvoiceItem) decimal.Decimal {
	if !item.TotalPrice.IsZero() {
		return item.TotalPrice
	}
	return item.Quantity.Mul(item.UnitPrice)
}

// row left-aligns label and right-aligns value within width
func row(label, value string, width int) string {
	gap := width - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func center(s string, width int) string {
	pad := (width - utf8.RuneCountInString(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
