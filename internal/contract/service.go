package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("contract not found")
	ErrInvalidInput = errors.New("invalid input")
)

const collection = "contracts"

// pool is the subset of *pgxpool.Pool the service uses.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db       pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *Service {
	return &Service{db: db, cache: c, recorder: rec}
}

type Filter struct {
	ClientID    *uuid.UUID
	PersonnelID *uuid.UUID
	Status      models.ContractStatus
}

const contractColumns = `id, client_id, personnel_id, type, position, start_date, end_date, hourly_rate, status, version, created_at, updated_at`

func scanContract(row pgx.Row) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.PersonnelID, &c.Type, &c.Position, &c.StartDate,
		&c.EndDate, &c.HourlyRate, &c.Status, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Contract, error) {
	unfiltered := f == (Filter{})
	if unfiltered {
		var cached []models.Contract
		if s.cache.GetCollection(ctx, collection, &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)
		args = append(args, *f.ClientID)
		argIdx++
	}
	if f.PersonnelID != nil {
		query += fmt.Sprintf(" AND personnel_id = $%d", argIdx)
		args = append(args, *f.PersonnelID)
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
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, collection, contracts)
	}
	return contracts, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, err := scanContract(s.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

type CreateRequest struct {
	ClientID    uuid.UUID  `json:"client_id"`
	PersonnelID uuid.UUID  `json:"personnel_id"`
	Type        string     `json:"type"`
	Position    string     `json:"position"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	HourlyRate  float64    `json:"hourly_rate"`
}

func (req CreateRequest) validate() error {
	if req.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if req.PersonnelID == uuid.Nil {
		return fmt.Errorf("%w: personnel_id is required", ErrInvalidInput)
	}
	switch req.Type {
	case "cdi", "cdd", "interim":
	default:
		return fmt.Errorf("%w: unknown contract type %q", ErrInvalidInput, req.Type)
	}
	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}
	if req.HourlyRate <= 0 {
		return fmt.Errorf("%w: hourly_rate must be positive", ErrInvalidInput)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: end_date before start_date", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Contract, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := scanContract(tx.QueryRow(ctx,
		`INSERT INTO contracts (client_id, personnel_id, type, position, start_date, end_date, hourly_rate, status, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		 RETURNING `+contractColumns,
		req.ClientID, req.PersonnelID, req.Type, req.Position, req.StartDate, req.EndDate,
		req.HourlyRate, models.ContractDraft,
	))
	if err != nil {
		return nil, fmt.Errorf("insert contract: %w", err)
	}

	// The creation entry carries the full snapshot and no diff map.
	if err := insertHistory(ctx, tx, c, models.ChangeCreation, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "contract", EntityID: &c.ID, NewData: snapshot(c),
	})
	return c, nil
}

type UpdateRequest struct {
	Type       *string                `json:"type"`
	Position   *string                `json:"position"`
	StartDate  *time.Time             `json:"start_date"`
	EndDate    *time.Time             `json:"end_date"`
	HourlyRate *float64               `json:"hourly_rate"`
	Status     *models.ContractStatus `json:"status"`
}

// Update applies a partial patch. When the patch changes anything a
// new version is appended to the history with the field diff computed
// at write time; a no-op patch leaves version and history untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Contract, error) {
	if req.Status != nil {
		switch *req.Status {
		case models.ContractDraft, models.ContractActive, models.ContractSuspended,
			models.ContractTerminated, models.ContractExpired:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanContract(tx.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock contract: %w", err)
	}

	next := *prev
	if req.Type != nil {
		next.Type = *req.Type
	}
	if req.Position != nil {
		next.Position = *req.Position
	}
	if req.StartDate != nil {
		next.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		next.EndDate = req.EndDate
	}
	if req.HourlyRate != nil {
		next.HourlyRate = *req.HourlyRate
	}
	if req.Status != nil {
		next.Status = *req.Status
	}

	changes := Diff(snapshot(prev), snapshot(&next))
	if changes == nil {
		return prev, nil
	}

	next.Version = prev.Version + 1

	curr, err := scanContract(tx.QueryRow(ctx,
		`UPDATE contracts
		 SET type = $1, position = $2, start_date = $3, end_date = $4, hourly_rate = $5, status = $6, version = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING `+contractColumns,
		next.Type, next.Position, next.StartDate, next.EndDate, next.HourlyRate, next.Status, next.Version, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update contract: %w", err)
	}

	changeType := models.ChangeModification
	if _, ok := changes["status"]; ok && len(changes) == 1 {
		changeType = models.ChangeStatus
	}
	if err := insertHistory(ctx, tx, curr, changeType, changes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "contract", EntityID: &id,
		OldData: snapshot(prev), NewData: snapshot(curr),
	})
	return curr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// contract_history rows go with the contract (FK cascade).
	tag, err := s.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "contract", EntityID: &id, OldData: snapshot(prev),
	})
	return nil
}

// History lists a contract's version records newest first.
func (s *Service) History(ctx context.Context, contractID uuid.UUID) ([]models.ContractHistoryEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, contract_id, version, change_type, changes, snapshot, actor_id, actor_email, created_at
		 FROM contract_history WHERE contract_id = $1
		 ORDER BY created_at DESC`,
		contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("query contract history: %w", err)
	}
	defer rows.Close()

	var entries []models.ContractHistoryEntry
	for rows.Next() {
		var e models.ContractHistoryEntry
		var changes []byte
		if err := rows.Scan(&e.ID, &e.ContractID, &e.Version, &e.ChangeType, &changes, &e.Snapshot, &e.ActorID, &e.ActorEmail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, fmt.Errorf("decode history changes: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExpireOverdue marks active contracts past their end date as expired,
// recording a status_change history entry for each. Run by the worker.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM contracts WHERE status = $1 AND end_date IS NOT NULL AND end_date < now()`,
		models.ContractActive,
	)
	if err != nil {
		return 0, fmt.Errorf("query overdue contracts: %w", err)
	}
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan contract id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	expired := models.ContractExpired
	count := 0
	for _, id := range ids {
		if _, err := s.Update(ctx, id, UpdateRequest{Status: &expired}); err != nil {
			return count, fmt.Errorf("expire contract %s: %w", id, err)
		}
		count++
	}
	return count, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, c *models.Contract, changeType models.ChangeType, changes map[string]models.FieldChange) error {
	snap, err := json.Marshal(snapshot(c))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var changesJSON any
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("marshal changes: %w", err)
		}
		changesJSON = data
	}

	var actorID *uuid.UUID
	var actorEmail string
	if actor := auth.ActorFromContext(ctx); actor != nil {
		id := actor.ID
		actorID = &id
		actorEmail = actor.Email
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO contract_history (contract_id, version, change_type, changes, snapshot, actor_id, actor_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Version, changeType, changesJSON, snap, actorID, actorEmail,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// snapshot flattens a contract into the field map stored on history
// entries and compared by Diff. Dates are rendered as strings so the
// comparison stays shallow.
func snapshot(c *models.Contract) map[string]any {
	snap := map[string]any{
		"client_id":    c.ClientID.String(),
		"personnel_id": c.PersonnelID.String(),
		"type":         c.Type,
		"position":     c.Position,
		"start_date":   c.StartDate.Format("2006-01-02"),
		"hourly_rate":  c.HourlyRate,
		"status":       string(c.Status),
	}
	if c.EndDate != nil {
		snap["end_date"] = c.EndDate.Format("2006-01-02")
	} else {
		snap["end_date"] = nil
	}
	return snap
}
