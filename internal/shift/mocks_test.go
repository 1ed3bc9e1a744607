package shift

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// mockBackend keeps at most one open session, like the real backend per operator
type mockBackend struct {
	mu         sync.Mutex
	open       *domain.ShiftSession
	nextID     int
	openCalls  int
	closeCalls int
	openErr    error
	closeErr   error
	currentErr error
	expected   *string
}

func (m *mockBackend) CurrentShift(_ context.Context) (*domain.ShiftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	if m.open == nil {
		return nil, nil
	}
	cp := *m.open
	return &cp, nil
}

func (m *mockBackend) OpenShift(_ context.Context, in backend.OpenShiftRequest) (*domain.ShiftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCalls++
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.nextID++
	m.open = &domain.ShiftSession{
		ID:             fmt.Sprintf("shift-%d", m.nextID),
		OperatorID:     "backend-user",
		Status:         domain.ShiftStatusOpen,
		OpeningBalance: in.OpeningBalance,
		OpenedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Notes:          in.Notes,
	}
	cp := *m.open
	return &cp, nil
}

func (m *mockBackend) CloseShift(_ context.Context, id string, in backend.CloseShiftRequest) (*domain.ShiftSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	if m.closeErr != nil {
		return nil, m.closeErr
	}
	if m.open == nil || m.open.ID != id {
		return nil, fmt.Errorf("shift %s not open", id)
	}
	closed := *m.open
	closed.Status = domain.ShiftStatusClosed
	actual := in.ActualCash
	closed.ActualCash = &actual
	if m.expected != nil {
		exp := mustDec(*m.expected)
		closed.ExpectedCash = &exp
		diff := actual.Sub(exp)
		closed.Difference = &diff
	}
	m.open = nil
	return &closed, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []domain.ShiftSession
}

func (r *recordingObserver) ShiftChanged(_ context.Context, s domain.ShiftSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}
