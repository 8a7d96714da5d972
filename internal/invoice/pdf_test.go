package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	ledpdf "github.com/ledongthuc/pdf"

	"github.com/Messano/brain-hr-hub/internal/models"
)

func testInvoice(lineCount int) (*models.Invoice, *models.Client, []models.InvoiceLine) {
	clientID := uuid.New()
	invoiceID := uuid.New()

	client := &models.Client{
		ID:          clientID,
		CompanyName: "Transports Morel",
		ContactName: "Jean Morel",
		Address:     "12 rue de la Gare, 69000 Lyon",
		Email:       "contact@transports-morel.fr",
		Siret:       "12345678900012",
		TaxCategory: models.TaxReduced,
	}

	var lines []models.InvoiceLine
	totalHT := 0.0
	for i := 0; i < lineCount; i++ {
		amount := 8.0 * 25.0
		totalHT += amount
		lines = append(lines, models.InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			Description: fmt.Sprintf("Mission cariste semaine %d", i+1),
			Quantity:    8,
			UnitPrice:   25,
			AmountHT:    amount,
		})
	}
	totalTVA, totalTTC := Totals(totalHT, client.TaxCategory)

	due := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:            invoiceID,
		InvoiceNumber: "FAC-2025-0042",
		ClientID:      clientID,
		IssueDate:     time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Status:        models.InvoiceSent,
		TotalHT:       totalHT,
		TotalTVA:      totalTVA,
		TotalTTC:      totalTTC,
	}
	return inv, client, lines
}

func readPDF(t *testing.T, data []byte) *ledpdf.Reader {
	t.Helper()
	r, err := ledpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("generated document is not a readable PDF: %v", err)
	}
	return r
}

func TestRenderPDFSinglePage(t *testing.T) {
	inv, client, lines := testInvoice(3)

	data, err := renderPDF(inv, client, lines)
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}

	r := readPDF(t, data)
	if got := r.NumPage(); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}

	page := r.Page(1)
	text, err := page.GetPlainText(nil)
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if !strings.Contains(text, "FAC-2025-0042") {
		t.Error("invoice number missing from document")
	}
	if !strings.Contains(text, "Transports Morel") {
		t.Error("client name missing from document")
	}
	if !strings.Contains(text, "FACTURE") {
		t.Error("header missing from document")
	}
}

func TestRenderPDFBreaksPageOnOverflow(t *testing.T) {
	// Enough rows to push the cursor past the break threshold.
	inv, client, lines := testInvoice(60)

	data, err := renderPDF(inv, client, lines)
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}

	if got := readPDF(t, data).NumPage(); got < 2 {
		t.Errorf("page count = %d, want at least 2", got)
	}
}

func TestRenderPDFEmptyInvoice(t *testing.T) {
	inv, client, _ := testInvoice(0)
	inv.TotalHT, inv.TotalTVA, inv.TotalTTC = 0, 0, 0

	data, err := renderPDF(inv, client, nil)
	if err != nil {
		t.Fatalf("renderPDF: %v", err)
	}
	if got := readPDF(t, data).NumPage(); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
}

func TestPDFFilename(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"FAC-2025-0042", "facture_FAC-2025-0042.pdf"},
		{"FAC 2025/0042", "facture_FAC_2025_0042.pdf"},
		{"", "facture_.pdf"},
	}
	for _, tt := range tests {
		if got := pdfFilename(tt.number); got != tt.want {
			t.Errorf("pdfFilename(%q) = %q, want %q", tt.number, got, tt.want)
		}
	}
}
