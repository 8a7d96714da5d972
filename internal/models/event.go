package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMeeting   EventType = "meeting"
	EventInterview EventType = "interview"
	EventTraining  EventType = "training"
	EventDeadline  EventType = "deadline"
	EventOther     EventType = "other"
)

// Event is a standalone calendar item; it has no parent entity.
type Event struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Type      EventType  `json:"type" db:"type"`
	StartsAt  time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time  `json:"ends_at" db:"ends_at"`
	Location  string     `json:"location,omitempty" db:"location"`
	Attendees []string   `json:"attendees,omitempty" db:"attendees"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
