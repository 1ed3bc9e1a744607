package checkout

import (
	"context"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// complete runs after the backend accepted the invoice. Nothing here can undo
// the sale, so every failure becomes a warning.
func (o *Orchestrator) complete(ctx context.Context, session *domain.ShiftSession, snap cart.Snapshot, res *Result, log *zap.Logger) {
	inv := res.Invoice
	log = log.With(zap.String("invoice_number", inv.InvoiceNumber))

	res.Receipt = o.renderer.Render(inv)
	if o.receipts != nil {
		if err := o.receipts.Print(ctx, inv, res.Receipt); err != nil {
			o.warn(res, log, "receipt could not be printed", err)
		}
	}

	o.cart.Settle(snap)

	if err := o.shifts.RecordSale(ctx, inv); err != nil {
		o.warn(res, log, "sale not recorded on shift", err)
	}

	items := soldItems(inv, snap)
	if o.events != nil {
		if err := o.events.SaleCommitted(ctx, o.saleEvent(session, res, items)); err != nil {
			o.warn(res, log, "sale event not recorded", err)
		}
	}

	if o.catalog != nil {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		if err := o.catalog.Evict(ctx, ids...); err != nil {
			o.warn(res, log, "product cache not refreshed", err)
		}
	}

	log.Info("checkout completed",
		zap.String("total", inv.TotalAmount.StringFixed(2)),
		zap.String("payment_method", inv.PaymentMethod.String()),
		zap.Int("warnings", len(res.Warnings)))
}

// completeUnconfirmed runs when the backend took the invoice but its response
// could not be read. The sale is treated as committed: the cart is settled so
// the goods are not sold twice, and the operator is told to verify it.
func (o *Orchestrator) completeUnconfirmed(
	ctx context.Context,
	session *domain.ShiftSession,
	snap cart.Snapshot,
	req Request,
	due decimal.Decimal,
	res *Result,
	cause error,
	log *zap.Logger,
) {
	res.Unconfirmed = true
	o.warn(res, log, "sale accepted but the invoice could not be read, verify it on the backend before selling these items again", cause)

	o.cart.Settle(snap)

	// provisional figures keep the local cash tally in step with the backend
	provisional := &domain.Invoice{
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   due,
		ShiftID:       &session.ID,
	}
	if err := o.shifts.RecordSale(ctx, provisional); err != nil {
		o.warn(res, log, "sale not recorded on shift", err)
	}

	if o.catalog != nil {
		ids := make([]string, 0, len(snap.Lines))
		for _, l := range snap.Lines {
			ids = append(ids, l.ProductID)
		}
		if err := o.catalog.Evict(ctx, ids...); err != nil {
			o.warn(res, log, "product cache not refreshed", err)
		}
	}

	log.Warn("checkout committed without a readable invoice",
		zap.String("due", due.StringFixed(2)),
		zap.String("payment_method", req.PaymentMethod.String()))
}

func (o *Orchestrator) saleEvent(session *domain.ShiftSession, res *Result, items []domain.SoldItem) domain.SaleCommitted {
	inv := res.Invoice
	evt := domain.SaleCommitted{
		CheckoutID:    res.CheckoutID,
		TerminalID:    o.terminalID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ShiftID:       session.ID,
		CustomerID:    inv.CustomerID,
		PaymentMethod: inv.PaymentMethod,
		TotalAmount:   inv.TotalAmount,
		Items:         items,
		CommittedAt:   o.now().UTC(),
	}
	if inv.ShiftID != nil && *inv.ShiftID != "" {
		evt.ShiftID = *inv.ShiftID
	}
	return evt
}

// soldItems prefers the invoice's items and falls back to the snapshot when
// the backend did not echo them.
func soldItems(inv *domain.Invoice, snap cart.Snapshot) []domain.SoldItem {
	if len(inv.Items) > 0 {
		items := make([]domain.SoldItem, 0, len(inv.Items))
		for _, it := range inv.Items {
			items = append(items, domain.SoldItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		return items
	}
	items := make([]domain.SoldItem, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, domain.SoldItem{ProductID: l.ProductID, Quantity: decimal.NewFromInt(int64(l.Quantity))})
	}
	return items
}
