package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductLookup resolves scanned or selected products
type ProductLookup interface {
	ByID(ctx context.Context, id string) (*domain.Product, error)
	ByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
}

type CartHandler struct {
	cart     *cart.Cart
	products ProductLookup
	timeout  time.Duration
	log      *zap.Logger
}

func NewCartHandler(c *cart.Cart, products ProductLookup, timeout time.Duration, log *zap.Logger) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{
		cart:     c,
		products: products,
		timeout:  timeout,
		log:      log,
	}
}

// Request/Response DTOs

type AddItemRequest struct {
	Barcode   string `json:"barcode,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	pricing.Totals
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.Barcode == "" && req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "barcode or product_id is required")
		return
	}
	// omitted quantity means a single scan
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		product *domain.Product
		err     error
	)
	if req.Barcode != "" {
		product, err = h.products.ByBarcode(ctx, req.Barcode)
	} else {
		product, err = h.products.ByID(ctx, req.ProductID)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if _, err := h.cart.AddItem(*product, req.Quantity); err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Debug("item added",
		zap.String("request_id", getRequestID(r.Context())),
		zap.String("product_id", product.ID),
		zap.Int("quantity", req.Quantity))

	respondJSON(w, http.StatusCreated, h.view())
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if err := h.cart.SetQuantity(productID, req.Quantity); err != nil {
		writeError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view())
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	h.cart.RemoveItem(productID)
	respondJSON(w, http.StatusOK, h.view())
}

// ClearCart handles DELETE /api/v1/cart?confirm=true
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "confirmation_required", "clearing the cart requires confirm=true")
		return
	}

	h.cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) view() CartResponse {
	lines := h.cart.Lines()
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	if lines == nil {
		lines = []domain.LineItem{}
	}
	return CartResponse{
		Items:     lines,
		ItemCount: count,
		Totals:    pricing.Compute(lines).Rounded(),
	}
}
