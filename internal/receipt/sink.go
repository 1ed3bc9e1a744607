package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// Sink receives every rendered receipt: printers, archives, displays.
type Sink interface {
	Print(ctx context.Context, inv *domain.Invoice, doc []byte) error
}

// WriterPrinter writes receipts to a device file or stdout
type WriterPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: w}
}

func (p *WriterPrinter) Print(_ context.Context, inv *domain.Invoice, doc []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.w.Write(doc); err != nil {
		return fmt.Errorf("failed to print receipt %s: %w", inv.InvoiceNumber, err)
	}
	// paper feed between receipts
	if _, err := io.WriteString(p.w, "\n\n"); err != nil {
		return fmt.Errorf("failed to print receipt %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

// Fanout hands the receipt to every sink. A failing sink does not stop the others.
type Fanout []Sink

func (f Fanout) Print(ctx context.Context, inv *domain.Invoice, doc []byte) error {
	var errs []error
	for _, s := range f {
		if err := s.Print(ctx, inv, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
