package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Messano/brain-hr-hub/internal/models"
	"github.com/Messano/brain-hr-hub/pkg/money"
)

// Page geometry, in millimetres on A4 portrait. Line rows advance the
// cursor by rowHeight; crossing rowBreakY while emitting rows starts a
// new page with the cursor back at topMargin. Content already placed
// is never reflowed and the table header is not repeated on
// continuation pages.
const (
	leftMargin  = 20.0
	rightEdge   = 190.0
	topMargin   = 20.0
	rowHeight   = 8.0
	rowBreakY   = 260.0
	colQtyX     = 120.0
	colUnitX    = 145.0
	colAmountX  = 190.0
)

// PDFResult is a fully rendered invoice document.
type PDFResult struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// GeneratePDF renders the complete invoice document. Any fetch error
// aborts the generation; a partial document is never returned.
func (s *Service) GeneratePDF(ctx context.Context, invoiceID uuid.UUID) (*PDFResult, error) {
	inv, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	var client models.Client
	err = s.db.QueryRow(ctx,
		`SELECT id, company_name, contact_name, email, phone, address, siret, tax_category, notes, created_at, updated_at
		 FROM clients WHERE id = $1`, inv.ClientID,
	).Scan(&client.ID, &client.CompanyName, &client.ContactName, &client.Email, &client.Phone,
		&client.Address, &client.Siret, &client.TaxCategory, &client.Notes, &client.CreatedAt, &client.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("invoice client %s not found", inv.ClientID)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice client: %w", err)
	}

	lines, err := s.Lines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	data, err := renderPDF(inv, &client, lines)
	if err != nil {
		return nil, err
	}

	return &PDFResult{
		Filename: pdfFilename(inv.InvoiceNumber),
		Data:     data,
	}, nil
}

// renderPDF paints the fixed layout: header, client block, line table,
// totals block. Single pass, manual Y cursor.
func renderPDF(inv *models.Invoice, client *models.Client, lines []models.InvoiceLine) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	y := topMargin

	// Header
	doc.SetFont("Helvetica", "B", 20)
	doc.Text(leftMargin, y, "FACTURE")
	doc.SetFont("Helvetica", "", 11)
	textRight(doc, colAmountX, y, inv.InvoiceNumber)
	y += 6
	textRight(doc, colAmountX, y, tr("Date d'émission : "+inv.IssueDate.Format("02/01/2006")))
	if inv.DueDate != nil {
		y += 6
		textRight(doc, colAmountX, y, tr("Échéance : "+inv.DueDate.Format("02/01/2006")))
	}
	y += 14

	// Client block
	doc.SetFont("Helvetica", "B", 12)
	doc.Text(leftMargin, y, tr("Facturé à"))
	y += 7
	doc.SetFont("Helvetica", "", 11)
	doc.Text(leftMargin, y, tr(client.CompanyName))
	for _, line := range []string{client.ContactName, client.Address, client.Email} {
		if line == "" {
			continue
		}
		y += 6
		doc.Text(leftMargin, y, tr(line))
	}
	if client.Siret != "" {
		y += 6
		doc.Text(leftMargin, y, tr("SIRET : "+client.Siret))
	}
	y += 14

	// Table header
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(leftMargin, y, tr("Désignation"))
	textRight(doc, colQtyX, y, tr("Qté"))
	textRight(doc, colUnitX, y, "P.U. HT")
	textRight(doc, colAmountX, y, "Montant HT")
	y += 2
	doc.Line(leftMargin, y, rightEdge, y)
	y += rowHeight - 2

	// Line rows
	doc.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		if y > rowBreakY {
			doc.AddPage()
			y = topMargin
			doc.SetFont("Helvetica", "", 10)
		}
		doc.Text(leftMargin, y, tr(truncate(l.Description, 60)))
		textRight(doc, colQtyX, y, money.Format(l.Quantity))
		textRight(doc, colUnitX, y, money.Format(l.UnitPrice))
		textRight(doc, colAmountX, y, money.Format(l.AmountHT))
		y += rowHeight
	}

	// Totals block
	if y > rowBreakY {
		doc.AddPage()
		y = topMargin
	}
	y += 4
	doc.Line(110, y, rightEdge, y)
	y += rowHeight

	doc.SetFont("Helvetica", "", 11)
	doc.Text(110, y, "Total HT")
	textRight(doc, colAmountX, y, tr(money.FormatEUR(inv.TotalHT)))
	y += rowHeight
	doc.Text(110, y, tr(client.TaxCategory.Label()))
	textRight(doc, colAmountX, y, tr(money.FormatEUR(inv.TotalTVA)))
	y += rowHeight

	doc.SetFillColor(230, 230, 230)
	doc.Rect(108, y-6, rightEdge-108, 9, "F")
	doc.SetFont("Helvetica", "B", 12)
	doc.Text(110, y, "Total TTC")
	textRight(doc, colAmountX, y, tr(money.FormatEUR(inv.TotalTTC)))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func textRight(doc *fpdf.Fpdf, x, y float64, s string) {
	doc.Text(x-doc.GetStringWidth(s), y, s)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// pdfFilename derives the download name from the human-readable
// invoice number.
func pdfFilename(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, number)
	return "facture_" + safe + ".pdf"
}
