package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "brouillon"
	InvoiceSent    InvoiceStatus = "envoyee"
	InvoicePaid    InvoiceStatus = "payee"
	InvoiceOverdue InvoiceStatus = "en_retard"
)

type Invoice struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	ClientID      uuid.UUID     `json:"client_id" db:"client_id"`
	IssueDate     time.Time     `json:"issue_date" db:"issue_date"`
	DueDate       *time.Time    `json:"due_date,omitempty" db:"due_date"`
	Status        InvoiceStatus `json:"status" db:"status"`
	TotalHT       float64       `json:"total_ht" db:"total_ht"`
	TotalTVA      float64       `json:"total_tva" db:"total_tva"`
	TotalTTC      float64       `json:"total_ttc" db:"total_ttc"`
	Notes         string        `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type InvoiceLine struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	AmountHT    float64   `json:"amount_ht" db:"amount_ht"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
