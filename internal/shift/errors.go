package shift

import "errors"

var (
	ErrNoActiveShift         = errors.New("no active shift")
	ErrActualCashRequired    = errors.New("actual cash is required to close a shift")
	ErrInvalidActualCash     = errors.New("actual cash must not be negative")
	ErrInvalidOpeningBalance = errors.New("opening balance must not be negative")
	ErrSessionNotFound       = errors.New("shift session not found")
	ErrSessionClosed         = errors.New("shift session is closed and cannot change")
)
