package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
	"github.com/Messano/brain-hr-hub/pkg/money"
)

var (
	ErrNotFound     = errors.New("invoice not found")
	ErrInvalidInput = errors.New("invalid input")
)

const collection = "invoices"

type Service struct {
	db       *pgxpool.Pool
	cache    *cache.Cache
	recorder *audit.Recorder
}

func NewService(db *pgxpool.Pool, c *cache.Cache, rec *audit.Recorder) *Service {
	return &Service{db: db, cache: c, recorder: rec}
}

const invoiceColumns = `id, invoice_number, client_id, issue_date, due_date, status, total_ht, total_tva, total_ttc, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.IssueDate, &inv.DueDate,
		&inv.Status, &inv.TotalHT, &inv.TotalTVA, &inv.TotalTTC, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type Filter struct {
	ClientID *uuid.UUID
	Status   models.InvoiceStatus
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Invoice, error) {
	unfiltered := f == (Filter{})
	if unfiltered {
		var cached []models.Invoice
		if s.cache.GetCollection(ctx, collection, &cached) {
			return cached, nil
		}
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)
		args = append(args, *f.ClientID)
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
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if unfiltered {
		s.cache.SetCollection(ctx, collection, invoices)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := scanInvoice(s.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// Lines returns an invoice's line items in creation order.
func (s *Service) Lines(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLine, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, invoice_id, description, quantity, unit_price, amount_ht, created_at
		 FROM invoice_lines WHERE invoice_id = $1
		 ORDER BY created_at ASC`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []models.InvoiceLine
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.AmountHT, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type LineRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateRequest struct {
	ClientID  uuid.UUID     `json:"client_id"`
	IssueDate time.Time     `json:"issue_date"`
	DueDate   *time.Time    `json:"due_date"`
	Notes     string        `json:"notes"`
	Lines     []LineRequest `json:"lines"`
}

func (req CreateRequest) validate() error {
	if req.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	return validateLines(req.Lines)
}

func validateLines(lines []LineRequest) error {
	for i, l := range lines {
		if l.Description == "" {
			return fmt.Errorf("%w: line %d has no description", ErrInvalidInput, i+1)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i+1)
		}
		if l.UnitPrice < 0 {
			return fmt.Errorf("%w: line %d unit_price must not be negative", ErrInvalidInput, i+1)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Invoice, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var taxCategory models.TaxCategory
	err = tx.QueryRow(ctx, `SELECT tax_category FROM clients WHERE id = $1`, req.ClientID).Scan(&taxCategory)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: client %s does not exist", ErrInvalidInput, req.ClientID)
	}
	if err != nil {
		return nil, fmt.Errorf("get client tax category: %w", err)
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next invoice number: %w", err)
	}
	number := fmt.Sprintf("FAC-%d-%04d", issueDate.Year(), seq)

	totalHT := 0.0
	for _, l := range req.Lines {
		totalHT += l.Quantity * l.UnitPrice
	}
	totalHT = money.Round2(totalHT)
	totalTVA, totalTTC := Totals(totalHT, taxCategory)

	inv, err := scanInvoice(tx.QueryRow(ctx,
		`INSERT INTO invoices (invoice_number, client_id, issue_date, due_date, status, total_ht, total_tva, total_ttc, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+invoiceColumns,
		number, req.ClientID, issueDate, req.DueDate, models.InvoiceDraft,
		totalHT, totalTVA, totalTTC, req.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	if err := insertLines(ctx, tx, inv.ID, req.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "invoice", EntityID: &inv.ID, NewData: inv,
	})
	return inv, nil
}

type UpdateRequest struct {
	IssueDate *time.Time            `json:"issue_date"`
	DueDate   *time.Time            `json:"due_date"`
	Status    *models.InvoiceStatus `json:"status"`
	Notes     *string               `json:"notes"`
	Lines     *[]LineRequest        `json:"lines"`
}

// Update patches the invoice header and, when Lines is present,
// replaces the line items and recomputes the totals from the client's
// tax category.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Invoice, error) {
	if req.Status != nil {
		switch *req.Status {
		case models.InvoiceDraft, models.InvoiceSent, models.InvoicePaid, models.InvoiceOverdue:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
	}
	if req.Lines != nil {
		if err := validateLines(*req.Lines); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := scanInvoice(tx.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}

	next := *prev
	if req.IssueDate != nil {
		next.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		next.DueDate = req.DueDate
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}

	if req.Lines != nil {
		var taxCategory models.TaxCategory
		if err := tx.QueryRow(ctx, `SELECT tax_category FROM clients WHERE id = $1`, prev.ClientID).Scan(&taxCategory); err != nil {
			return nil, fmt.Errorf("get client tax category: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear invoice lines: %w", err)
		}
		if err := insertLines(ctx, tx, id, *req.Lines); err != nil {
			return nil, err
		}

		totalHT := 0.0
		for _, l := range *req.Lines {
			totalHT += l.Quantity * l.UnitPrice
		}
		next.TotalHT = money.Round2(totalHT)
		next.TotalTVA, next.TotalTTC = Totals(next.TotalHT, taxCategory)
	}

	curr, err := scanInvoice(tx.QueryRow(ctx,
		`UPDATE invoices
		 SET issue_date = $1, due_date = $2, status = $3, notes = $4,
		     total_ht = $5, total_tva = $6, total_ttc = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING `+invoiceColumns,
		next.IssueDate, next.DueDate, next.Status, next.Notes,
		next.TotalHT, next.TotalTVA, next.TotalTTC, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "invoice", EntityID: &id, OldData: prev, NewData: curr,
	})
	return curr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// invoice_lines rows go with the invoice (FK cascade).
	tag, err := s.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "invoice", EntityID: &id, OldData: prev,
	})
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, lines []LineRequest) error {
	for _, l := range lines {
		_, err := tx.Exec(ctx,
			`INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, amount_ht)
			 VALUES ($1, $2, $3, $4, $5)`,
			invoiceID, l.Description, l.Quantity, l.UnitPrice, l.Quantity*l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}
