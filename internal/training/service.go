// Package training manages training sessions and their personnel
// enrollments.
package training

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
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("training not found")
	ErrInvalidInput = errors.New("invalid input")
)

const collection = "trainings"

type Service struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *Service {
	return &Service{db: db, cache: c, recorder: rec}
}

const trainingColumns = `id, title, provider, description, start_date, end_date, status, created_at, updated_at`

func scanTraining(row pgx.Row) (*models.Training, error) {
	var t models.Training
	err := row.Scan(&t.ID, &t.Title, &t.Provider, &t.Description, &t.StartDate, &t.EndDate,
		&t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type Filter struct {
	Status string
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Training, error) {
	unfiltered := f == (Filter{})
	if unfiltered {
		var cached []models.Training
		if s.cache.GetCollection(ctx, collection, &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + trainingColumns + ` FROM trainings WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		query += " AND status = $1"
		args = append(args, f.Status)
	}
	query += " ORDER BY start_date DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	defer rows.Close()

	var trainings []models.Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("scan training: %w", err)
		}
		trainings = append(trainings, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, collection, trainings)
	}
	return trainings, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	t, err := scanTraining(s.db.QueryRow(ctx, `SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get training: %w", err)
	}
	return t, nil
}

type CreateRequest struct {
	Title       string     `json:"title"`
	Provider    string     `json:"provider"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Training, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}

	t, err := scanTraining(s.db.QueryRow(ctx,
		`INSERT INTO trainings (title, provider, description, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5, 'planifiee')
		 RETURNING `+trainingColumns,
		strings.TrimSpace(req.Title), req.Provider, req.Description, req.StartDate, req.EndDate,
	))
	if err != nil {
		return nil, fmt.Errorf("insert training: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "training", EntityID: &t.ID, NewData: t,
	})
	return t, nil
}

type UpdateRequest struct {
	Title       *string    `json:"title"`
	Provider    *string    `json:"provider"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Training, error) {
	if req.Status != nil {
		switch *req.Status {
		case "planifiee", "en_cours", "terminee", "annulee":
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
	}

	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Provider != nil {
		next.Provider = *req.Provider
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.StartDate != nil {
		next.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		next.EndDate = req.EndDate
	}
	if req.Status != nil {
		next.Status = *req.Status
	}

	if next.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	curr, err := scanTraining(s.db.QueryRow(ctx,
		`UPDATE trainings
		 SET title = $1, provider = $2, description = $3, start_date = $4, end_date = $5, status = $6, updated_at = now()
		 WHERE id = $7
		 RETURNING `+trainingColumns,
		next.Title, next.Provider, next.Description, next.StartDate, next.EndDate, next.Status, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update training: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "training", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// training_participants rows go with the training (FK cascade).
	tag, err := s.db.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete training: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "training", EntityID: &id, OldData: prev,
	})
	return nil
}

// Participants lists a training's enrollments in creation order.
func (s *Service) Participants(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingParticipant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, training_id, personnel_id, result, created_at
		 FROM training_participants WHERE training_id = $1
		 ORDER BY created_at ASC`,
		trainingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.TrainingParticipant
	for rows.Next() {
		var p models.TrainingParticipant
		if err := rows.Scan(&p.ID, &p.TrainingID, &p.PersonnelID, &p.Result, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Service) AddParticipant(ctx context.Context, trainingID, personnelID uuid.UUID) (*models.TrainingParticipant, error) {
	if personnelID == uuid.Nil {
		return nil, fmt.Errorf("%w: personnel_id is required", ErrInvalidInput)
	}

	var p models.TrainingParticipant
	err := s.db.QueryRow(ctx,
		`INSERT INTO training_participants (training_id, personnel_id, result)
		 VALUES ($1, $2, 'inscrit')
		 RETURNING id, training_id, personnel_id, result, created_at`,
		trainingID, personnelID,
	).Scan(&p.ID, &p.TrainingID, &p.PersonnelID, &p.Result, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "training_participant", EntityID: &p.ID, NewData: p,
	})
	return &p, nil
}

func (s *Service) RemoveParticipant(ctx context.Context, trainingID, participantID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM training_participants WHERE id = $1 AND training_id = $2`,
		participantID, trainingID,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "training_participant", EntityID: &participantID,
	})
	return nil
}
