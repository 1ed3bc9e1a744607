package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.uber.org/zap"
)

// Recorder turns sales and shift changes into outbox events. Events are keyed
// by shift so a consumer sees open, sales and close in order.
type Recorder struct {
	store      Store
	terminalID string
	now        func() time.Time
	log        *zap.Logger
}

func NewRecorder(store Store, terminalID string, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		store:      store,
		terminalID: terminalID,
		now:        time.Now,
		log:        log,
	}
}

func (r *Recorder) SaleCommitted(ctx context.Context, evt domain.SaleCommitted) error {
	aggregate := evt.ShiftID
	if aggregate == "" {
		aggregate = evt.InvoiceID
	}
	return r.add(ctx, aggregate, domain.EventSaleCommitted, evt)
}

// ShiftChanged records shift.opened or shift.closed. Failures are logged,
// the shift itself has already changed.
func (r *Recorder) ShiftChanged(ctx context.Context, session domain.ShiftSession) {
	eventType := domain.EventShiftOpened
	at := session.OpenedAt
	if session.Status == domain.ShiftStatusClosed {
		eventType = domain.EventShiftClosed
		at = r.now()
		if session.ClosedAt != nil {
			at = *session.ClosedAt
		}
	}

	evt := domain.ShiftChanged{
		ShiftID:        session.ID,
		TerminalID:     r.terminalID,
		OperatorID:     session.OperatorID,
		Status:         session.Status,
		OpeningBalance: session.OpeningBalance,
		ActualCash:     session.ActualCash,
		ExpectedCash:   session.ExpectedCash,
		Difference:     session.Difference,
		At:             at.UTC(),
	}
	if err := r.add(ctx, session.ID, eventType, evt); err != nil {
		r.log.Warn("shift event not recorded",
			zap.String("shift_id", session.ID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func (r *Recorder) add(ctx context.Context, aggregateID, eventType string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if _, err := r.store.AddEvent(ctx, aggregateID, eventType, payload); err != nil {
		return err
	}
	return nil
}
