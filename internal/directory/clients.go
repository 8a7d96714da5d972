// Package directory manages the agency's client companies and its
// personnel pool.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type ClientService struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewClientService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *ClientService {
	return &ClientService{db: db, cache: c, recorder: rec}
}

const clientColumns = `id, company_name, contact_name, email, phone, address, siret, tax_category, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Address,
		&c.Siret, &c.TaxCategory, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type ClientFilter struct {
	Search      string
	TaxCategory models.TaxCategory
}

func (s *ClientService) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	// Only the unfiltered list is cached; filtered reads go to the
	// database every time.
	unfiltered := f == (ClientFilter{})
	if unfiltered {
		var cached []models.Client
		if s.cache.GetCollection(ctx, "clients", &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Search != "" {
		query += fmt.Sprintf(" AND company_name ILIKE $%d", argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.TaxCategory != "" {
		query += fmt.Sprintf(" AND tax_category = $%d", argIdx)
		args = append(args, f.TaxCategory)
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, "clients", clients)
	}
	return clients, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := scanClient(s.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

type ClientRequest struct {
	CompanyName string             `json:"company_name"`
	ContactName string             `json:"contact_name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Address     string             `json:"address"`
	Siret       string             `json:"siret"`
	TaxCategory models.TaxCategory `json:"tax_category"`
	Notes       string             `json:"notes"`
}

func (req ClientRequest) validate() error {
	if strings.TrimSpace(req.CompanyName) == "" {
		return fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	switch req.TaxCategory {
	case "", models.TaxExempt, models.TaxReduced, models.TaxStandard:
	default:
		return fmt.Errorf("%w: unknown tax_category %q", ErrInvalidInput, req.TaxCategory)
	}
	return nil
}

func (s *ClientService) Create(ctx context.Context, req ClientRequest) (*models.Client, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.TaxCategory == "" {
		req.TaxCategory = models.TaxStandard
	}

	c, err := scanClient(s.db.QueryRow(ctx,
		`INSERT INTO clients (company_name, contact_name, email, phone, address, siret, tax_category, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+clientColumns,
		strings.TrimSpace(req.CompanyName), req.ContactName, req.Email, req.Phone,
		req.Address, req.Siret, req.TaxCategory, req.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}

	s.cache.InvalidateCollection(ctx, "clients")
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "client", EntityID: &c.ID, NewData: c,
	})
	return c, nil
}

type ClientPatch struct {
	CompanyName *string             `json:"company_name"`
	ContactName *string             `json:"contact_name"`
	Email       *string             `json:"email"`
	Phone       *string             `json:"phone"`
	Address     *string             `json:"address"`
	Siret       *string             `json:"siret"`
	TaxCategory *models.TaxCategory `json:"tax_category"`
	Notes       *string             `json:"notes"`
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, patch ClientPatch) (*models.Client, error) {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if patch.CompanyName != nil {
		next.CompanyName = strings.TrimSpace(*patch.CompanyName)
	}
	if patch.ContactName != nil {
		next.ContactName = *patch.ContactName
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.Phone != nil {
		next.Phone = *patch.Phone
	}
	if patch.Address != nil {
		next.Address = *patch.Address
	}
	if patch.Siret != nil {
		next.Siret = *patch.Siret
	}
	if patch.TaxCategory != nil {
		next.TaxCategory = *patch.TaxCategory
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}

	if next.CompanyName == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrInvalidInput)
	}
	switch next.TaxCategory {
	case models.TaxExempt, models.TaxReduced, models.TaxStandard:
	default:
		return nil, fmt.Errorf("%w: unknown tax_category %q", ErrInvalidInput, next.TaxCategory)
	}

	curr, err := scanClient(s.db.QueryRow(ctx,
		`UPDATE clients
		 SET company_name = $1, contact_name = $2, email = $3, phone = $4, address = $5,
		     siret = $6, tax_category = $7, notes = $8, updated_at = now()
		 WHERE id = $9
		 RETURNING `+clientColumns,
		next.CompanyName, next.ContactName, next.Email, next.Phone, next.Address,
		next.Siret, next.TaxCategory, next.Notes, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.cache.InvalidateCollection(ctx, "clients")
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "client", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, "clients")
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "client", EntityID: &id, OldData: prev,
	})
	return nil
}
