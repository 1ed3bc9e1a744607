// Package http exposes the terminal to the cashier UI as a JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart     *CartHandler
	Shift    *ShiftHandler
	Checkout *CheckoutHandler
	Receipt  *ReceiptHandler
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	AuthToken          string
}

// NewRouter mounts the API under /api/v1. /health stays unauthenticated.
func NewRouter(hs Handlers, cfg RouterConfig, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(TokenAuthMiddleware(cfg.AuthToken))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", hs.Cart.GetCart)
			r.Delete("/", hs.Cart.ClearCart)
			r.Post("/items", hs.Cart.AddItem)
			r.Put("/items/{productID}", hs.Cart.UpdateQuantity)
			r.Delete("/items/{productID}", hs.Cart.RemoveItem)
		})

		r.Route("/shift", func(r chi.Router) {
			r.Get("/", hs.Shift.GetCurrent)
			r.Get("/history", hs.Shift.History)
			r.Post("/open", hs.Shift.OpenShift)
			r.Post("/close", hs.Shift.CloseShift)
		})

		r.Get("/checkout/quote", hs.Checkout.GetQuote)
		r.Post("/checkout", hs.Checkout.Checkout)

		r.Post("/receipts/render", hs.Receipt.Render)
		r.Get("/receipts/{invoiceNumber}", hs.Receipt.GetArchived)
		r.Get("/invoices/{invoiceID}/receipt", hs.Receipt.InvoiceReceipt)
	})

	return otelhttp.NewHandler(r, "pos-terminal")
}
