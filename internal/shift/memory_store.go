package shift

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
)

// MemoryStore implements Store in memory; sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ShiftSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.ShiftSession)}
}

func (s *MemoryStore) GetOpen(_ context.Context, operatorID string) (*domain.ShiftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.OperatorID == operatorID && session.IsOpen() {
			cp := *session
			return &cp, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.ShiftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, session *domain.ShiftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[session.ID]; ok && existing.Status.IsTerminal() {
		return ErrSessionClosed
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

// List returns the most recently opened sessions first
func (s *MemoryStore) List(_ context.Context, limit int) ([]*domain.ShiftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ShiftSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		cp := *session
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.After(out[j].OpenedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
