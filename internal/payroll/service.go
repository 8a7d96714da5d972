// Package payroll manages monthly pay records for the agency's
// personnel.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("payroll not found")
	ErrInvalidInput = errors.New("invalid input")
)

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

const collection = "payrolls"

type Service struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *Service {
	return &Service{db: db, cache: c, recorder: rec}
}

const payrollColumns = `id, personnel_id, period, gross_salary, net_salary, hours_worked, status, paid_at, created_at, updated_at`

func scanPayroll(row pgx.Row) (*models.Payroll, error) {
	var p models.Payroll
	err := row.Scan(&p.ID, &p.PersonnelID, &p.Period, &p.GrossSalary, &p.NetSalary,
		&p.HoursWorked, &p.Status, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type Filter struct {
	PersonnelID *uuid.UUID
	Period      string
	Status      string
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Payroll, error) {
	unfiltered := f == (Filter{})
	if unfiltered {
		var cached []models.Payroll
		if s.cache.GetCollection(ctx, collection, &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.PersonnelID != nil {
		query += fmt.Sprintf(" AND personnel_id = $%d", argIdx)
		args = append(args, *f.PersonnelID)
		argIdx++
	}
	if f.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", argIdx)
		args = append(args, f.Period)
		argIdx++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	query += " ORDER BY period DESC, created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []models.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payroll: %w", err)
		}
		payrolls = append(payrolls, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, collection, payrolls)
	}
	return payrolls, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Payroll, error) {
	p, err := scanPayroll(s.db.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payrolls WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payroll: %w", err)
	}
	return p, nil
}

type CreateRequest struct {
	PersonnelID uuid.UUID `json:"personnel_id"`
	Period      string    `json:"period"`
	GrossSalary float64   `json:"gross_salary"`
	NetSalary   float64   `json:"net_salary"`
	HoursWorked float64   `json:"hours_worked"`
}

func (req CreateRequest) validate() error {
	if req.PersonnelID == uuid.Nil {
		return fmt.Errorf("%w: personnel_id is required", ErrInvalidInput)
	}
	if !periodRe.MatchString(req.Period) {
		return fmt.Errorf("%w: period must be YYYY-MM", ErrInvalidInput)
	}
	if req.GrossSalary < 0 || req.NetSalary < 0 || req.HoursWorked < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Payroll, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	p, err := scanPayroll(s.db.QueryRow(ctx,
		`INSERT INTO payrolls (personnel_id, period, gross_salary, net_salary, hours_worked, status)
		 VALUES ($1, $2, $3, $4, $5, 'brouillon')
		 RETURNING `+payrollColumns,
		req.PersonnelID, req.Period, req.GrossSalary, req.NetSalary, req.HoursWorked,
	))
	if err != nil {
		return nil, fmt.Errorf("insert payroll: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "payroll", EntityID: &p.ID, NewData: p,
	})
	return p, nil
}

type UpdateRequest struct {
	GrossSalary *float64 `json:"gross_salary"`
	NetSalary   *float64 `json:"net_salary"`
	HoursWorked *float64 `json:"hours_worked"`
	Status      *string  `json:"status"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Payroll, error) {
	if req.Status != nil {
		switch *req.Status {
		case "brouillon", "validee", "payee":
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
	}

	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if req.GrossSalary != nil {
		next.GrossSalary = *req.GrossSalary
	}
	if req.NetSalary != nil {
		next.NetSalary = *req.NetSalary
	}
	if req.HoursWorked != nil {
		next.HoursWorked = *req.HoursWorked
	}
	if req.Status != nil {
		next.Status = *req.Status
		if next.Status == "payee" && prev.Status != "payee" {
			now := time.Now().UTC()
			next.PaidAt = &now
		}
	}

	curr, err := scanPayroll(s.db.QueryRow(ctx,
		`UPDATE payrolls
		 SET gross_salary = $1, net_salary = $2, hours_worked = $3, status = $4, paid_at = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING `+payrollColumns,
		next.GrossSalary, next.NetSalary, next.HoursWorked, next.Status, next.PaidAt, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update payroll: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "payroll", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM payrolls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "payroll", EntityID: &id, OldData: prev,
	})
	return nil
}
