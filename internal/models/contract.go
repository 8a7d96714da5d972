package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractDraft      ContractStatus = "brouillon"
	ContractActive     ContractStatus = "actif"
	ContractSuspended  ContractStatus = "suspendu"
	ContractTerminated ContractStatus = "termine"
	ContractExpired    ContractStatus = "expire"
)

type Contract struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	ClientID    uuid.UUID      `json:"client_id" db:"client_id"`
	PersonnelID uuid.UUID      `json:"personnel_id" db:"personnel_id"`
	Type        string         `json:"type" db:"type"` // cdi, cdd, interim
	Position    string         `json:"position,omitempty" db:"position"`
	StartDate   time.Time      `json:"start_date" db:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty" db:"end_date"`
	HourlyRate  float64        `json:"hourly_rate" db:"hourly_rate"`
	Status      ContractStatus `json:"status" db:"status"`
	Version     int            `json:"version" db:"version"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type ChangeType string

const (
	ChangeCreation     ChangeType = "creation"
	ChangeModification ChangeType = "modification"
	ChangeStatus       ChangeType = "status_change"
)

// FieldChange is one entry of a history diff map: the value before and
// after a modification.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ContractHistoryEntry is an immutable version record for a contract.
// Version numbers are strictly increasing per contract; the creation
// entry carries no diff map.
type ContractHistoryEntry struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	ContractID uuid.UUID              `json:"contract_id" db:"contract_id"`
	Version    int                    `json:"version" db:"version"`
	ChangeType ChangeType             `json:"change_type" db:"change_type"`
	Changes    map[string]FieldChange `json:"changes,omitempty" db:"changes"`
	Snapshot   json.RawMessage        `json:"snapshot" db:"snapshot"`
	ActorID    *uuid.UUID             `json:"actor_id,omitempty" db:"actor_id"`
	ActorEmail string                 `json:"actor_email,omitempty" db:"actor_email"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}
