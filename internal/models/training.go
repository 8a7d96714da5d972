package models

import (
	"time"

	"github.com/google/uuid"
)

type Training struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Provider    string     `json:"provider,omitempty" db:"provider"`
	Description string     `json:"description,omitempty" db:"description"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	Status      string     `json:"status" db:"status"` // planifiee, en_cours, terminee, annulee
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type TrainingParticipant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TrainingID  uuid.UUID `json:"training_id" db:"training_id"`
	PersonnelID uuid.UUID `json:"personnel_id" db:"personnel_id"`
	Result      string    `json:"result,omitempty" db:"result"` // inscrit, present, absent, valide
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
