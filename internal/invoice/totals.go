// Package invoice manages invoices, their line items, the VAT totals
// derived from the client's tax category, and the PDF rendering of a
// complete invoice document.
package invoice

import (
	"github.com/Messano/brain-hr-hub/internal/models"
	"github.com/Messano/brain-hr-hub/pkg/money"
)

// Totals derives the VAT and all-inclusive amounts from the pre-tax
// total and the client's tax category. Both results are rounded to two
// decimals.
func Totals(totalHT float64, cat models.TaxCategory) (totalTVA, totalTTC float64) {
	totalTVA = money.Round2(totalHT * cat.Rate())
	totalTTC = money.Round2(totalHT + totalTVA)
	return totalTVA, totalTTC
}
