package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrUnavailable covers network failures and an open circuit breaker.
// Callers may retry; nothing is retried automatically.
var ErrUnavailable = errors.New("backend unavailable")

// ErrUnreadableResponse means the backend answered 2xx but the body could not
// be decoded. The request took effect; it must not be treated as a failure to retry.
var ErrUnreadableResponse = errors.New("backend accepted the request but its response is unreadable")

// APIError is a response the backend rejected. Detail is its message, unchanged.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Detail
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// isClientError is used by the breaker: a rejected request means the backend is up.
func isClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
}

// newAPIError reads {"detail": "..."}; validation errors carry a list there,
// in which case the raw body is kept.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			detail = s
		} else {
			detail = string(payload.Detail)
		}
	}
	return &APIError{StatusCode: status, Detail: detail}
}
