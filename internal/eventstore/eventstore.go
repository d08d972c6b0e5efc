// internal/eventstore/eventstore.go

// Package eventstore is an append-only, per-aggregate event log with
// optimistic concurrency.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

// Event is one recorded domain event.
type Event struct {
	ID            int64             `json:"id"`
	AggregateID   uuid.UUID         `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	EventType     string            `json:"event_type"`
	EventData     json.RawMessage   `json:"event_data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Version       int               `json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Store appends and reads event streams. Append succeeds only when the
// stream is at expectedVersion; the appended events take the versions that
// follow it.
type Store interface {
	Append(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error
	Load(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error)
	LoadByType(ctx context.Context, aggregateID uuid.UUID, eventType string) ([]Event, error)
	Version(ctx context.Context, aggregateID uuid.UUID) (int, error)
}

// NewEvent marshals data into an event of the given type.
func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{EventType: eventType, EventData: raw}, nil
}

// AppendNext appends events at the stream's current version, retrying up to
// attempts times when another writer gets there first.
func AppendNext(ctx context.Context, s Store, aggregateID uuid.UUID, aggregateType string, attempts int, events ...Event) error {
	var err error
	for range max(attempts, 1) {
		var version int
		version, err = s.Version(ctx, aggregateID)
		if err != nil {
			return err
		}
		err = s.Append(ctx, aggregateID, aggregateType, version, events)
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
