package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/models"
	"github.com/Messano/brain-hr-hub/internal/queue"
)

// Entry is what a mutating service reports after a confirmed success.
type Entry struct {
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	OldData    any
	NewData    any
}

// Recorder captures audit entries off the request path. Entries are
// enqueued to the worker; when no queue client is configured they are
// written synchronously. Recording never fails the mutation that
// triggered it.
type Recorder struct {
	q   *queue.Client
	svc *Service
}

func NewRecorder(q *queue.Client, svc *Service) *Recorder {
	return &Recorder{q: q, svc: svc}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil {
		return
	}

	actor := auth.ActorFromContext(ctx)

	oldJSON := marshalSnapshot(e.OldData)
	newJSON := marshalSnapshot(e.NewData)
	now := time.Now().UTC()

	if r.q != nil {
		p := queue.AuditRecordPayload{
			Action:     e.Action,
			EntityType: e.EntityType,
			OldData:    string(oldJSON),
			NewData:    string(newJSON),
			OccurredAt: now.Format(time.RFC3339Nano),
		}
		if actor != nil {
			p.ActorID = actor.ID.String()
			p.ActorEmail = actor.Email
			p.ActorName = actor.Name
		}
		if e.EntityID != nil {
			p.EntityID = e.EntityID.String()
		}
		if err := r.q.EnqueueAuditRecord(p); err == nil {
			return
		} else {
			slog.Warn("audit enqueue failed, recording inline", "action", e.Action, "error", err)
		}
	}

	l := models.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldData:    oldJSON,
		NewData:    newJSON,
		CreatedAt:  now,
	}
	if actor != nil {
		id := actor.ID
		l.ActorID = &id
		l.ActorEmail = actor.Email
		l.ActorName = actor.Name
	}
	if err := r.svc.Insert(ctx, l); err != nil {
		slog.Error("audit record failed", "action", e.Action, "entity", e.EntityType, "error", err)
	}
}

// FromPayload rebuilds the audit row a worker persists.
func FromPayload(p queue.AuditRecordPayload) models.AuditLog {
	l := models.AuditLog{
		ActorEmail: p.ActorEmail,
		ActorName:  p.ActorName,
		Action:     p.Action,
		EntityType: p.EntityType,
	}
	if p.ActorID != "" {
		if id, err := uuid.Parse(p.ActorID); err == nil {
			l.ActorID = &id
		}
	}
	if p.EntityID != "" {
		if id, err := uuid.Parse(p.EntityID); err == nil {
			l.EntityID = &id
		}
	}
	if p.OldData != "" {
		l.OldData = json.RawMessage(p.OldData)
	}
	if p.NewData != "" {
		l.NewData = json.RawMessage(p.NewData)
	}
	if p.OccurredAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, p.OccurredAt); err == nil {
			l.CreatedAt = ts
		}
	}
	return l
}

func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("audit snapshot marshal failed", "error", err)
		return nil
	}
	return data
}
