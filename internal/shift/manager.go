// Package shift owns the till session that gates sales on this terminal.
//
// A session moves closed -> open -> closed and never changes once closed.
// The backend is authoritative for session identity and cash totals; the
// local Store remembers the open session across restarts.
package shift

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Backend interface {
	CurrentShift(ctx context.Context) (*domain.ShiftSession, error)
	OpenShift(ctx context.Context, in backend.OpenShiftRequest) (*domain.ShiftSession, error)
	CloseShift(ctx context.Context, id string, in backend.CloseShiftRequest) (*domain.ShiftSession, error)
}

// Observer is told about every session the manager opens, adopts or closes.
type Observer interface {
	ShiftChanged(ctx context.Context, session domain.ShiftSession)
}

type Manager struct {
	mu         sync.Mutex
	backend    Backend
	store      Store
	operatorID string
	observers  []Observer
	now        func() time.Time
	log        *zap.Logger
}

func NewManager(b Backend, store Store, operatorID string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		backend:    b,
		store:      store,
		operatorID: operatorID,
		now:        time.Now,
		log:        log,
	}
}

// Subscribe must be called before the manager is shared.
func (m *Manager) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Current returns the open session or ErrNoActiveShift.
func (m *Manager) Current(ctx context.Context) (*domain.ShiftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current(ctx)
}

// RequireOpen is checked before every sale.
func (m *Manager) RequireOpen(ctx context.Context) (*domain.ShiftSession, error) {
	return m.Current(ctx)
}

// Open starts a session. When one is already open it is returned unchanged.
func (m *Manager) Open(ctx context.Context, openingBalance decimal.Decimal, notes string) (*domain.ShiftSession, error) {
	if openingBalance.IsNegative() {
		return nil, ErrInvalidOpeningBalance
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.current(ctx)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNoActiveShift) {
		return nil, err
	}

	opened, err := m.backend.OpenShift(ctx, backend.OpenShiftRequest{OpeningBalance: openingBalance, Notes: notes})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			// opened from another client since we last looked
			if adopted, errAdopt := m.adopt(ctx); errAdopt == nil {
				return adopted, nil
			}
		}
		return nil, err
	}

	session := *opened
	session.OperatorID = m.operatorID
	session.Status = domain.ShiftStatusOpen
	session.CashSales = decimal.Zero
	if session.OpenedAt.IsZero() {
		session.OpenedAt = m.now()
	}
	if err := m.store.Save(ctx, &session); err != nil {
		return nil, err
	}

	m.log.Info("shift opened",
		zap.String("shift_id", session.ID),
		zap.String("opening_balance", session.OpeningBalance.StringFixed(2)))
	m.notify(ctx, session)
	return &session, nil
}

// Close ends the open session with the counted cash. The discrepancy against
// expected cash is recorded, not enforced.
func (m *Manager) Close(ctx context.Context, actualCash *decimal.Decimal, notes string) (*domain.ShiftSession, error) {
	if actualCash == nil {
		return nil, ErrActualCashRequired
	}
	if actualCash.IsNegative() {
		return nil, ErrInvalidActualCash
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(domain.ShiftStatusClosed) {
		return nil, ErrNoActiveShift
	}

	resp, err := m.backend.CloseShift(ctx, session.ID, backend.CloseShiftRequest{ActualCash: *actualCash, Notes: notes})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound) {
			if retired, rerr := m.retireIfClosedRemotely(ctx, session); rerr == nil && retired {
				return nil, fmt.Errorf("%w: shift %s is no longer open on the backend", ErrNoActiveShift, session.ID)
			}
		}
		return nil, err
	}

	closed := *session
	closed.Status = domain.ShiftStatusClosed
	actual := *actualCash
	closed.ActualCash = &actual

	expected := session.LocalExpectedCash()
	if resp.ExpectedCash != nil {
		expected = *resp.ExpectedCash
	}
	closed.ExpectedCash = &expected

	diff := actual.Sub(expected)
	if resp.Difference != nil {
		diff = *resp.Difference
	}
	closed.Difference = &diff

	closedAt := m.now()
	if resp.ClosedAt != nil {
		closedAt = *resp.ClosedAt
	}
	closed.ClosedAt = &closedAt
	if notes != "" {
		closed.Notes = notes
	}

	if err := m.store.Save(ctx, &closed); err != nil {
		return nil, err
	}

	m.log.Info("shift closed",
		zap.String("shift_id", closed.ID),
		zap.String("actual_cash", actual.StringFixed(2)),
		zap.String("expected_cash", expected.StringFixed(2)),
		zap.String("difference", diff.StringFixed(2)))
	m.notify(ctx, closed)
	return &closed, nil
}

// RecordSale adds a committed invoice to the open session's local tally.
func (m *Manager) RecordSale(ctx context.Context, inv *domain.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.GetOpen(ctx, m.operatorID)
	if errors.Is(err, ErrSessionNotFound) {
		return ErrNoActiveShift
	}
	if err != nil {
		return err
	}

	session.SalesCount++
	if inv.PaymentMethod == domain.PaymentMethodCash {
		session.CashSales = session.CashSales.Add(inv.TotalAmount)
	}
	return m.store.Save(ctx, session)
}

func (m *Manager) History(ctx context.Context, limit int) ([]*domain.ShiftSession, error) {
	return m.store.List(ctx, limit)
}

// current reads the local journal first and falls back to the backend, adopting
// a session that was opened before this process started.
func (m *Manager) current(ctx context.Context) (*domain.ShiftSession, error) {
	session, err := m.store.GetOpen(ctx, m.operatorID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return m.adopt(ctx)
}

func (m *Manager) adopt(ctx context.Context) (*domain.ShiftSession, error) {
	remote, err := m.backend.CurrentShift(ctx)
	if err != nil {
		return nil, err
	}
	if remote == nil || remote.Status != domain.ShiftStatusOpen {
		return nil, ErrNoActiveShift
	}

	session := *remote
	session.OperatorID = m.operatorID
	if known, errGet := m.store.Get(ctx, session.ID); errGet == nil {
		session.SalesCount = known.SalesCount
		session.CashSales = known.CashSales
	}
	if err := m.store.Save(ctx, &session); err != nil {
		return nil, err
	}

	m.log.Info("adopted open shift from backend", zap.String("shift_id", session.ID))
	m.notify(ctx, session)
	return &session, nil
}

func (m *Manager) notify(ctx context.Context, session domain.ShiftSession) {
	for _, o := range m.observers {
		o.ShiftChanged(ctx, session)
	}
}

// retireIfClosedRemotely closes the local copy of session when the backend no
// longer reports it as the operator's open shift. The backend's close values
// are unknown here, so only the status and close time are recorded.
func (m *Manager) retireIfClosedRemotely(ctx context.Context, session *domain.ShiftSession) (bool, error) {
	remote, err := m.backend.CurrentShift(ctx)
	if err != nil {
		return false, err
	}
	if remote != nil && remote.ID == session.ID && remote.Status == domain.ShiftStatusOpen {
		return false, nil
	}

	retired := *session
	retired.Status = domain.ShiftStatusClosed
	closedAt := m.now()
	retired.ClosedAt = &closedAt
	if err := m.store.Save(ctx, &retired); err != nil {
		return false, err
	}

	m.log.Warn("local shift was closed outside this terminal",
		zap.String("shift_id", session.ID))
	m.notify(ctx, retired)
	return true, nil
}
