package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type mockStore struct {
	mu        sync.Mutex
	events    []*Event
	nextID    int64
	addErr    error
	fetchErr  error
	markErr   error
	purgeErr  error
	purged    int64
	purgeCuts []time.Time
}

func (m *mockStore) AddEvent(_ context.Context, aggregateID, eventType string, payload []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.nextID++
	m.events = append(m.events, &Event{
		ID:          m.nextID,
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	return m.nextID, nil
}

func (m *mockStore) GetUnprocessedEvents(_ context.Context, limit int) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]*Event, 0)
	for _, e := range m.events {
		if e.ProcessedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	for _, e := range m.events {
		if e.ID == id && e.ProcessedAt == nil {
			now := time.Now()
			e.ProcessedAt = &now
			return nil
		}
	}
	return ErrEventNotFound
}

func (m *mockStore) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeCuts = append(m.purgeCuts, before)
	return m.purged, m.purgeErr
}

func (m *mockStore) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.ProcessedAt == nil {
			n++
		}
	}
	return n
}

// fakeWriter fails once it has accepted failAfter messages, when failAfter > 0
type fakeWriter struct {
	mu        sync.Mutex
	messages  []kafka.Message
	failAfter int
	closed    bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failAfter > 0 && len(w.messages) >= w.failAfter {
		return errors.New("broker unavailable")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}
