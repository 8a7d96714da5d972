package models

import (
	"time"

	"github.com/google/uuid"
)

type PersonnelStatus string

const (
	PersonnelActive    PersonnelStatus = "actif"
	PersonnelInactive  PersonnelStatus = "inactif"
	PersonnelOnMission PersonnelStatus = "en_mission"
)

type Personnel struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	FirstName     string          `json:"first_name" db:"first_name"`
	LastName      string          `json:"last_name" db:"last_name"`
	Email         string          `json:"email,omitempty" db:"email"`
	Phone         string          `json:"phone,omitempty" db:"phone"`
	Position      string          `json:"position,omitempty" db:"position"`
	Qualification string          `json:"qualification,omitempty" db:"qualification"`
	HireDate      *time.Time      `json:"hire_date,omitempty" db:"hire_date"`
	Status        PersonnelStatus `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type Payroll struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	PersonnelID uuid.UUID  `json:"personnel_id" db:"personnel_id"`
	Period      string     `json:"period" db:"period"` // YYYY-MM
	GrossSalary float64    `json:"gross_salary" db:"gross_salary"`
	NetSalary   float64    `json:"net_salary" db:"net_salary"`
	HoursWorked float64    `json:"hours_worked" db:"hours_worked"`
	Status      string     `json:"status" db:"status"` // brouillon, validee, payee
	PaidAt      *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
