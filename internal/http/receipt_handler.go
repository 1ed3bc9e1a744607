package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/receipt"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReceiptRenderer interface {
	Render(inv *domain.Invoice) []byte
}

type ReceiptArchive interface {
	Get(ctx context.Context, invoiceNumber string) (*receipt.Record, error)
}

type InvoiceFetcher interface {
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
}

// ReceiptHandler serves receipt text. archive and invoices may be nil, in
// which case the routes depending on them answer 503.
type ReceiptHandler struct {
	renderer ReceiptRenderer
	archive  ReceiptArchive
	invoices InvoiceFetcher
	timeout  time.Duration
	log      *zap.Logger
}

func NewReceiptHandler(
	renderer ReceiptRenderer,
	archive ReceiptArchive,
	invoices InvoiceFetcher,
	timeout time.Duration,
	log *zap.Logger,
) *ReceiptHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReceiptHandler{
		renderer: renderer,
		archive:  archive,
		invoices: invoices,
		timeout:  timeout,
		log:      log,
	}
}

// Render handles POST /api/v1/receipts/render with an invoice body
func (h *ReceiptHandler) Render(w http.ResponseWriter, r *http.Request) {
	var inv domain.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid invoice body")
		return
	}
	if inv.InvoiceNumber == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "invoice_number is required")
		return
	}

	respondText(w, http.StatusOK, h.renderer.Render(&inv))
}

// GetArchived handles GET /api/v1/receipts/{invoiceNumber}
func (h *ReceiptHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusServiceUnavailable, "archive_disabled", "receipt archive is not configured")
		return
	}
	number := chi.URLParam(r, "invoiceNumber")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rec, err := h.archive.Get(ctx, number)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondText(w, http.StatusOK, []byte(rec.Text))
}

// InvoiceReceipt handles GET /api/v1/invoices/{invoiceID}/receipt and
// re-renders a committed invoice fetched from the backend.
func (h *ReceiptHandler) InvoiceReceipt(w http.ResponseWriter, r *http.Request) {
	if h.invoices == nil {
		respondError(w, http.StatusServiceUnavailable, "backend_unavailable", "invoice lookup is not configured")
		return
	}
	id := chi.URLParam(r, "invoiceID")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	inv, err := h.invoices.GetInvoice(ctx, id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondText(w, http.StatusOK, h.renderer.Render(inv))
}
