// internal/eventstore/memory.go
package eventstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps streams in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	streams map[uuid.UUID][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[uuid.UUID][]Event)}
}

func (m *MemoryStore) Append(_ context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	if expectedVersion < 0 {
		return ErrInvalidVersion
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.streams[aggregateID]
	if len(stream) != expectedVersion {
		return ErrConcurrencyConflict
	}
	now := time.Now().UTC()
	for i, e := range events {
		m.nextID++
		e.ID = m.nextID
		e.AggregateID = aggregateID
		e.AggregateType = aggregateType
		e.Version = expectedVersion + i + 1
		e.CreatedAt = now
		stream = append(stream, e)
	}
	m.streams[aggregateID] = stream
	return nil
}

func (m *MemoryStore) Load(_ context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, e := range m.streams[aggregateID] {
		if e.Version < fromVersion || (toVersion > 0 && e.Version > toVersion) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryStore) LoadByType(_ context.Context, aggregateID uuid.UUID, eventType string) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, e := range m.streams[aggregateID] {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) Version(_ context.Context, aggregateID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.streams[aggregateID]), nil
}
