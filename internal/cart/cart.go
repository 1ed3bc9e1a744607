// Package cart holds the line items of the terminal's current sale.
//
// Stock checks use the snapshot carried by the product passed in; the cart
// never re-queries stock. A refused mutation leaves the cart unchanged.
package cart

import (
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

type Cart struct {
	mu       sync.RWMutex
	lines    []domain.LineItem
	revision uint64
	held     *heldSale
}

// heldSale tracks how much of a held snapshot is still in the cart. Each
// product's count only shrinks, so quantity re-added after a removal is
// never mistaken for the sold quantity.
type heldSale struct {
	revision  uint64
	remaining map[string]int
}

func (h *heldSale) shrink(productID string, qty int) {
	if h == nil {
		return
	}
	if cur, ok := h.remaining[productID]; ok && qty < cur {
		h.remaining[productID] = qty
	}
}

func New() *Cart {
	return &Cart{}
}

// Snapshot is a frozen copy of the cart taken at checkout time
type Snapshot struct {
	Lines    []domain.LineItem
	Revision uint64
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// AddItem merges qty into the product's line, or appends a new line with the
// product's current price and tax rate.
func (c *Cart) AddItem(product domain.Product, qty int) (domain.LineItem, error) {
	if qty <= 0 {
		return domain.LineItem{}, ErrInvalidQuantity
	}
	if !product.InStock() {
		return domain.LineItem{}, ErrOutOfStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(product.ID)
	if idx >= 0 {
		line := c.lines[idx]
		requested := line.Quantity + qty
		if requested > product.Stock {
			return domain.LineItem{}, &StockError{ProductID: product.ID, Requested: requested, Available: product.Stock}
		}
		line.Quantity = requested
		line.Stock = product.Stock
		c.lines[idx] = line
		c.revision++
		return line, nil
	}

	if qty > product.Stock {
		return domain.LineItem{}, &StockError{ProductID: product.ID, Requested: qty, Available: product.Stock}
	}
	line := domain.NewLineItem(product, qty)
	c.lines = append(c.lines, line)
	c.revision++
	return line, nil
}

// SetQuantity replaces a line's quantity. qty <= 0 removes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	if qty <= 0 {
		c.removeAt(idx)
		return nil
	}
	line := c.lines[idx]
	if qty > line.Stock {
		return &StockError{ProductID: productID, Requested: qty, Available: line.Stock}
	}
	c.lines[idx].Quantity = qty
	c.held.shrink(productID, qty)
	c.revision++
	return nil
}

func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(productID); idx >= 0 {
		c.removeAt(idx)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lines {
		c.held.shrink(l.ProductID, 0)
	}
	c.lines = nil
	c.revision++
}

// Lines returns a copy in insertion order
func (c *Cart) Lines() []domain.LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.copyLines()
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{Lines: c.copyLines(), Revision: c.revision}
}

// Hold snapshots the cart for a checkout and starts tracking how much of it
// stays in the cart until Settle. A later Hold replaces the earlier one.
func (c *Cart) Hold() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{Lines: c.copyLines(), Revision: c.revision}
	held := &heldSale{revision: c.revision, remaining: make(map[string]int, len(snap.Lines))}
	for _, l := range snap.Lines {
		held.remaining[l.ProductID] = l.Quantity
	}
	c.held = held
	return snap
}

// Settle is called once the sale in snap has been committed. Mutations made
// after the snapshot survive as a fresh cart: new lines stay, grown lines keep
// only the growth, everything else that was sold is dropped. For a held
// snapshot only the sold quantity that never left the cart is deducted, so a
// line removed and added again after the snapshot is kept whole.
func (c *Cart) Settle(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.held
	c.held = nil

	if c.revision == snap.Revision {
		c.lines = nil
		c.revision++
		return
	}

	sold := make(map[string]int, len(snap.Lines))
	if held != nil && held.revision == snap.Revision {
		for id, q := range held.remaining {
			sold[id] = q
		}
	} else {
		for _, l := range snap.Lines {
			sold[l.ProductID] = l.Quantity
		}
	}

	fresh := make([]domain.LineItem, 0, len(c.lines))
	for _, l := range c.lines {
		q, ok := sold[l.ProductID]
		if !ok {
			fresh = append(fresh, l)
			continue
		}
		if l.Quantity > q {
			l.Quantity -= q
			fresh = append(fresh, l)
		}
	}
	c.lines = fresh
	c.revision++
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.held.shrink(c.lines[idx].ProductID, 0)
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	c.revision++
}

func (c *Cart) copyLines() []domain.LineItem {
	out := make([]domain.LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}
