// internal/eventstore/postgres.go
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Schema creates the events table. History reads filter on event_type, so
// streams are indexed by it too.
const Schema = `
	CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		aggregate_id UUID NOT NULL,
		aggregate_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		metadata JSONB,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (aggregate_id, version)
	);
	CREATE INDEX IF NOT EXISTS events_aggregate_type_idx ON events (aggregate_id, event_type, version);
`

const selectEvents = `
	SELECT id, aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at
	FROM events
`

// PostgresStore keeps events in the events table.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("coursemarket/eventstore"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (es *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := es.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

// conflict maps the errors Postgres raises when two writers race on one
// stream onto ErrConcurrencyConflict.
func conflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "23505", "40001": // unique_violation on (aggregate_id, version), serialization_failure
		return true
	}
	return false
}

// Append writes events in one serializable transaction.
func (es *PostgresStore) Append(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	ctx, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	err := es.inTx(ctx, func(tx *sql.Tx) error {
		current, err := streamVersion(ctx, tx, aggregateID)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			span.SetAttributes(attribute.Int("actual.version", current))
			return ErrConcurrencyConflict
		}

		createdAt := es.now()
		for i, event := range events {
			version := expectedVersion + i + 1
			var metadata any // NULL without metadata
			if len(event.Metadata) > 0 {
				raw, err := json.Marshal(event.Metadata)
				if err != nil {
					return fmt.Errorf("marshal metadata of %s: %w", event.EventType, err)
				}
				metadata = raw
			}
			var id int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO events (aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id
			`, aggregateID, aggregateType, event.EventType, []byte(event.EventData), metadata, version, createdAt).Scan(&id)
			if err != nil {
				return fmt.Errorf("insert %s at version %d: %w", event.EventType, version, err)
			}
			span.AddEvent("event.appended", trace.WithAttributes(
				attribute.Int64("event.id", id),
				attribute.Int("event.version", version),
				attribute.String("event.type", event.EventType),
			))
		}
		return nil
	})
	if conflict(err) {
		err = ErrConcurrencyConflict
	}
	if errors.Is(err, ErrConcurrencyConflict) {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
	}
	return err
}

func (es *PostgresStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := es.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func streamVersion(ctx context.Context, q queryRower, aggregateID uuid.UUID) (int, error) {
	var version int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1`, aggregateID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query stream version: %w", err)
	}
	return version, nil
}

// Load returns events with fromVersion <= version <= toVersion, in order.
// A toVersion of 0 means no upper bound.
func (es *PostgresStore) Load(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	query := selectEvents + ` WHERE aggregate_id = $1 AND version >= $2`
	args := []any{aggregateID, fromVersion}
	if toVersion > 0 {
		query += ` AND version <= $3`
		args = append(args, toVersion)
	}
	events, err := es.query(ctx, query+` ORDER BY version`, args...)
	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, err
}

// LoadByType returns the stream's events of one type, in version order.
func (es *PostgresStore) LoadByType(ctx context.Context, aggregateID uuid.UUID, eventType string) ([]Event, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.load_by_type",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	events, err := es.query(ctx, selectEvents+` WHERE aggregate_id = $1 AND event_type = $2 ORDER BY version`, aggregateID, eventType)
	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, err
}

func (es *PostgresStore) query(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e        Event
			data     []byte
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &data, &metadata, &e.Version, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EventData = json.RawMessage(data)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of event %d: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (es *PostgresStore) Version(ctx context.Context, aggregateID uuid.UUID) (int, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID.String())),
	)
	defer span.End()

	version, err := streamVersion(ctx, es.db, aggregateID)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}
