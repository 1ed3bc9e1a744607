package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
)

type OpenShiftRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes,omitempty"`
}

type CloseShiftRequest struct {
	ActualCash decimal.Decimal `json:"actual_cash"`
	Notes      string          `json:"notes,omitempty"`
}

// CurrentShift returns nil without error when the operator has no open shift.
func (c *Client) CurrentShift(ctx context.Context) (*domain.ShiftSession, error) {
	var s domain.ShiftSession
	err := c.do(ctx, http.MethodGet, "/shifts/current", nil, &s, nil)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) OpenShift(ctx context.Context, in OpenShiftRequest) (*domain.ShiftSession, error) {
	var s domain.ShiftSession
	if err := c.do(ctx, http.MethodPost, "/shifts/open", in, &s, nil); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) CloseShift(ctx context.Context, id string, in CloseShiftRequest) (*domain.ShiftSession, error) {
	var s domain.ShiftSession
	if err := c.do(ctx, http.MethodPost, "/shifts/"+url.PathEscape(id)+"/close", in, &s, nil); err != nil {
		return nil, err
	}
	return &s, nil
}
