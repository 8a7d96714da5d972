package directory

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

type PersonnelService struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewPersonnelService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *PersonnelService {
	return &PersonnelService{db: db, cache: c, recorder: rec}
}

const personnelColumns = `id, first_name, last_name, email, phone, position, qualification, hire_date, status, created_at, updated_at`

func scanPersonnel(row pgx.Row) (*models.Personnel, error) {
	var p models.Personnel
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Position,
		&p.Qualification, &p.HireDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type PersonnelFilter struct {
	Search string
	Status models.PersonnelStatus
}

func (s *PersonnelService) List(ctx context.Context, f PersonnelFilter) ([]models.Personnel, error) {
	unfiltered := f == (PersonnelFilter{})
	if unfiltered {
		var cached []models.Personnel
		if s.cache.GetCollection(ctx, "personnel", &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + personnelColumns + ` FROM personnel WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	defer rows.Close()

	var people []models.Personnel
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan personnel: %w", err)
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, "personnel", people)
	}
	return people, nil
}

func (s *PersonnelService) GetByID(ctx context.Context, id uuid.UUID) (*models.Personnel, error) {
	p, err := scanPersonnel(s.db.QueryRow(ctx, `SELECT `+personnelColumns+` FROM personnel WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get personnel: %w", err)
	}
	return p, nil
}

type PersonnelRequest struct {
	FirstName     string                 `json:"first_name"`
	LastName      string                 `json:"last_name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	Position      string                 `json:"position"`
	Qualification string                 `json:"qualification"`
	HireDate      *time.Time             `json:"hire_date"`
	Status        models.PersonnelStatus `json:"status"`
}

func (req PersonnelRequest) validate() error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}
	switch req.Status {
	case "", models.PersonnelActive, models.PersonnelInactive, models.PersonnelOnMission:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	return nil
}

func (s *PersonnelService) Create(ctx context.Context, req PersonnelRequest) (*models.Personnel, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = models.PersonnelActive
	}

	p, err := scanPersonnel(s.db.QueryRow(ctx,
		`INSERT INTO personnel (first_name, last_name, email, phone, position, qualification, hire_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+personnelColumns,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.Email, req.Phone,
		req.Position, req.Qualification, req.HireDate, req.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("insert personnel: %w", err)
	}

	s.cache.InvalidateCollection(ctx, "personnel")
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "personnel", EntityID: &p.ID, NewData: p,
	})
	return p, nil
}

type PersonnelPatch struct {
	FirstName     *string                 `json:"first_name"`
	LastName      *string                 `json:"last_name"`
	Email         *string                 `json:"email"`
	Phone         *string                 `json:"phone"`
	Position      *string                 `json:"position"`
	Qualification *string                 `json:"qualification"`
	HireDate      *time.Time              `json:"hire_date"`
	Status        *models.PersonnelStatus `json:"status"`
}

func (s *PersonnelService) Update(ctx context.Context, id uuid.UUID, patch PersonnelPatch) (*models.Personnel, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if patch.FirstName != nil {
		next.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		next.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.Phone != nil {
		next.Phone = *patch.Phone
	}
	if patch.Position != nil {
		next.Position = *patch.Position
	}
	if patch.Qualification != nil {
		next.Qualification = *patch.Qualification
	}
	if patch.HireDate != nil {
		next.HireDate = patch.HireDate
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}

	if next.FirstName == "" || next.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}

	curr, err := scanPersonnel(s.db.QueryRow(ctx,
		`UPDATE personnel
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, position = $5,
		     qualification = $6, hire_date = $7, status = $8, updated_at = now()
		 WHERE id = $9
		 RETURNING `+personnelColumns,
		next.FirstName, next.LastName, next.Email, next.Phone, next.Position,
		next.Qualification, next.HireDate, next.Status, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update personnel: %w", err)
	}

	s.cache.InvalidateCollection(ctx, "personnel")
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "personnel", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *PersonnelService) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM personnel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete personnel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, "personnel")
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "personnel", EntityID: &id, OldData: prev,
	})
	return nil
}
