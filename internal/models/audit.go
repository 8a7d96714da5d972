package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an immutable record of one mutating action. The
// application only ever inserts and reads these rows.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	ActorEmail string          `json:"actor_email,omitempty" db:"actor_email"`
	ActorName  string          `json:"actor_name,omitempty" db:"actor_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty" db:"entity_id"`
	OldData    json.RawMessage `json:"old_data,omitempty" db:"old_data"`
	NewData    json.RawMessage `json:"new_data,omitempty" db:"new_data"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
