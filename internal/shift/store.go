package shift

import (
	"context"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// Store is the terminal-local journal of shift sessions. Save must refuse to
// modify a session that is already stored as closed (ErrSessionClosed).
type Store interface {
	GetOpen(ctx context.Context, operatorID string) (*domain.ShiftSession, error)
	Get(ctx context.Context, id string) (*domain.ShiftSession, error)
	Save(ctx context.Context, session *domain.ShiftSession) error
	List(ctx context.Context, limit int) ([]*domain.ShiftSession, error)
	Close() error
}
