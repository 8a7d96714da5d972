// Package planning manages the shared calendar. Events are standalone
// items with no parent entity; listings default to ascending start
// time, the natural order for a calendar.
package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrInvalidInput = errors.New("invalid input")
)

const collection = "events"

type Service struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *Service {
	return &Service{db: db, cache: c, recorder: rec}
}

const eventColumns = `id, title, type, starts_at, ends_at, location, attendees, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Type, &e.StartsAt, &e.EndsAt, &e.Location,
		&e.Attendees, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type Filter struct {
	Type models.EventType
	From *time.Time
	To   *time.Time
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Event, error) {
	unfiltered := f == (Filter{})
	if unfiltered {
		var cached []models.Event
		if s.cache.GetCollection(ctx, collection, &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, f.Type)
		argIdx++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND starts_at >= $%d", argIdx)
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND starts_at <= $%d", argIdx)
		args = append(args, *f.To)
		argIdx++
	}
	query += " ORDER BY starts_at ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, collection, events)
	}
	return events, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(s.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

type EventRequest struct {
	Title     string           `json:"title"`
	Type      models.EventType `json:"type"`
	StartsAt  time.Time        `json:"starts_at"`
	EndsAt    time.Time        `json:"ends_at"`
	Location  string           `json:"location"`
	Attendees []string         `json:"attendees"`
}

func (req EventRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	switch req.Type {
	case models.EventMeeting, models.EventInterview, models.EventTraining, models.EventDeadline, models.EventOther:
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, req.Type)
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return fmt.Errorf("%w: starts_at and ends_at are required", ErrInvalidInput)
	}
	if req.EndsAt.Before(req.StartsAt) {
		return fmt.Errorf("%w: ends_at before starts_at", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req EventRequest) (*models.Event, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var createdBy *uuid.UUID
	if actor := auth.ActorFromContext(ctx); actor != nil {
		id := actor.ID
		createdBy = &id
	}

	e, err := scanEvent(s.db.QueryRow(ctx,
		`INSERT INTO events (title, type, starts_at, ends_at, location, attendees, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+eventColumns,
		strings.TrimSpace(req.Title), req.Type, req.StartsAt, req.EndsAt, req.Location, req.Attendees, createdBy,
	))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "event", EntityID: &e.ID, NewData: e,
	})
	return e, nil
}

type EventPatch struct {
	Title     *string           `json:"title"`
	Type      *models.EventType `json:"type"`
	StartsAt  *time.Time        `json:"starts_at"`
	EndsAt    *time.Time        `json:"ends_at"`
	Location  *string           `json:"location"`
	Attendees *[]string         `json:"attendees"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch EventPatch) (*models.Event, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.StartsAt != nil {
		next.StartsAt = *patch.StartsAt
	}
	if patch.EndsAt != nil {
		next.EndsAt = *patch.EndsAt
	}
	if patch.Location != nil {
		next.Location = *patch.Location
	}
	if patch.Attendees != nil {
		next.Attendees = *patch.Attendees
	}

	req := EventRequest{
		Title: next.Title, Type: next.Type, StartsAt: next.StartsAt, EndsAt: next.EndsAt,
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	curr, err := scanEvent(s.db.QueryRow(ctx,
		`UPDATE events
		 SET title = $1, type = $2, starts_at = $3, ends_at = $4, location = $5, attendees = $6, updated_at = now()
		 WHERE id = $7
		 RETURNING `+eventColumns,
		next.Title, next.Type, next.StartsAt, next.EndsAt, next.Location, next.Attendees, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "event", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "event", EntityID: &id, OldData: prev,
	})
	return nil
}
