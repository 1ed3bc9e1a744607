package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/shift"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type ShiftService interface {
	Current(ctx context.Context) (*domain.ShiftSession, error)
	Open(ctx context.Context, openingBalance decimal.Decimal, notes string) (*domain.ShiftSession, error)
	Close(ctx context.Context, actualCash *decimal.Decimal, notes string) (*domain.ShiftSession, error)
	History(ctx context.Context, limit int) ([]*domain.ShiftSession, error)
}

type ShiftHandler struct {
	shifts  ShiftService
	timeout time.Duration
	log     *zap.Logger
}

func NewShiftHandler(shifts ShiftService, timeout time.Duration, log *zap.Logger) *ShiftHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShiftHandler{
		shifts:  shifts,
		timeout: timeout,
		log:     log,
	}
}

type OpenShiftRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes,omitempty"`
}

type CloseShiftRequest struct {
	ActualCash *decimal.Decimal `json:"actual_cash"`
	Notes      string           `json:"notes,omitempty"`
}

// GetCurrent handles GET /api/v1/shift
func (h *ShiftHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.shifts.Current(ctx)
	if errors.Is(err, shift.ErrNoActiveShift) {
		respondError(w, http.StatusNotFound, "no_active_shift", err.Error())
		return
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// OpenShift handles POST /api/v1/shift/open
func (h *ShiftHandler) OpenShift(w http.ResponseWriter, r *http.Request) {
	var req OpenShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.shifts.Open(ctx, req.OpeningBalance, req.Notes)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// CloseShift handles POST /api/v1/shift/close
func (h *ShiftHandler) CloseShift(w http.ResponseWriter, r *http.Request) {
	var req CloseShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.shifts.Close(ctx, req.ActualCash, req.Notes)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// History handles GET /api/v1/shift/history?limit=
func (h *ShiftHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessions, err := h.shifts.History(ctx, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if sessions == nil {
		sessions = []*domain.ShiftSession{}
	}

	respondJSON(w, http.StatusOK, sessions)
}
