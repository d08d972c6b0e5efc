// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coursemarket/internal/logger"
)

// service implements the Service interface over a cached Index.
type service struct {
	provider Provider
	log      *logger.Logger
	tracer   trace.Tracer

	mu  sync.RWMutex
	idx *Index
}

// NewService creates a new catalog service instance and loads the catalog once.
func NewService(ctx context.Context, provider Provider, log *logger.Logger) (Service, error) {
	s := &service{
		provider: provider,
		log:      log.With("service", "catalog"),
		tracer:   otel.Tracer("coursemarket/catalog"),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the index from the provider. A failed reload keeps the
// previous index.
func (s *service) Reload(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "catalog.reload")
	defer span.End()

	snap, err := s.provider.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	idx, err := NewIndex(snap)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("invalid catalog: %w", err)
	}

	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("catalog.items", idx.Len()))
	s.log.Info("catalog loaded", "lessons", len(idx.lessons), "courses", len(idx.courses), "packs", len(idx.packs))
	return nil
}

func (s *service) Index(context.Context) (*Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx, nil
}

// Browse runs the filter/sort pipeline against the current index.
func (s *service) Browse(ctx context.Context, q Query, balance decimal.Decimal) ([]Entry, error) {
	_, span := s.tracer.Start(ctx, "catalog.browse",
		trace.WithAttributes(
			attribute.String("query.filter", string(q.Filter)),
			attribute.String("query.sort", string(q.Sort)),
			attribute.Bool("query.search", q.Search != ""),
		),
	)
	defer span.End()

	idx, _ := s.Index(ctx)
	entries := ComputeVisibleItems(idx, q, balance)
	span.SetAttributes(attribute.Int("result.count", len(entries)))
	return entries, nil
}

// GetItem retrieves an item from the catalog by its ID.
func (s *service) GetItem(ctx context.Context, id string) (Item, error) {
	idx, _ := s.Index(ctx)
	return idx.Item(id)
}

// PostgresProvider reads the catalog from the catalog_* tables.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// CatalogSchema creates the tables PostgresProvider reads.
const CatalogSchema = `
	CREATE TABLE IF NOT EXISTS catalog_courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		total_lessons INT NOT NULL DEFAULT 0,
		origin TEXT NOT NULL DEFAULT 'native',
		position INT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS catalog_lessons (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration_minutes INT NOT NULL DEFAULT 0,
		parent_course_id TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT 'native',
		position INT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS catalog_packs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		course_ids TEXT[] NOT NULL DEFAULT '{}',
		features TEXT[] NOT NULL DEFAULT '{}',
		position INT NOT NULL DEFAULT 0
	);
`

func (p *PostgresProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, description, total_lessons, origin
		FROM catalog_courses
		ORDER BY position, id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query courses: %w", err)
	}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.TotalLessons, &c.Origin); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan course: %w", err)
		}
		snap.Courses = append(snap.Courses, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate courses: %w", err)
	}

	rows, err = p.db.QueryContext(ctx, `
		SELECT id, title, description, duration_minutes, parent_course_id, origin
		FROM catalog_lessons
		ORDER BY position, id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query lessons: %w", err)
	}
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Duration, &l.ParentCourseID, &l.Origin); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan lesson: %w", err)
		}
		snap.Lessons = append(snap.Lessons, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate lessons: %w", err)
	}

	rows, err = p.db.QueryContext(ctx, `
		SELECT id, title, description, course_ids, features
		FROM catalog_packs
		ORDER BY position, id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query packs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pk Pack
		if err := rows.Scan(&pk.ID, &pk.Title, &pk.Description, pq.Array(&pk.CourseIDs), pq.Array(&pk.Features)); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan pack: %w", err)
		}
		snap.Packs = append(snap.Packs, pk)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate packs: %w", err)
	}

	return snap, nil
}
