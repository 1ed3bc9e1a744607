package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrStockExceeded   = errors.New("requested quantity exceeds available stock")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// StockError reports a refused quantity. It matches ErrStockExceeded.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrStockExceeded
}
