package models

import (
	"time"

	"github.com/google/uuid"
)

// TaxCategory selects the VAT rate applied to a client's invoices.
type TaxCategory string

const (
	TaxExempt   TaxCategory = "exoneree"
	TaxReduced  TaxCategory = "reduite"
	TaxStandard TaxCategory = "normale"
)

// Rate returns the VAT rate for the category. Unknown categories fall
// back to the standard rate.
func (c TaxCategory) Rate() float64 {
	switch c {
	case TaxExempt:
		return 0
	case TaxReduced:
		return 0.10
	default:
		return 0.20
	}
}

// Label returns the display label used on invoices.
func (c TaxCategory) Label() string {
	switch c {
	case TaxExempt:
		return "TVA 0% (exonérée)"
	case TaxReduced:
		return "TVA 10% (réduite)"
	default:
		return "TVA 20%"
	}
}

type Client struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	CompanyName string      `json:"company_name" db:"company_name"`
	ContactName string      `json:"contact_name,omitempty" db:"contact_name"`
	Email       string      `json:"email,omitempty" db:"email"`
	Phone       string      `json:"phone,omitempty" db:"phone"`
	Address     string      `json:"address,omitempty" db:"address"`
	Siret       string      `json:"siret,omitempty" db:"siret"`
	TaxCategory TaxCategory `json:"tax_category" db:"tax_category"`
	Notes       string      `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
