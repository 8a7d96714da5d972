package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/queue"
)

func TestFromPayload(t *testing.T) {
	actorID := uuid.New()
	entityID := uuid.New()
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	p := queue.AuditRecordPayload{
		ActorID:    actorID.String(),
		ActorEmail: "rh@agence.fr",
		ActorName:  "Claire Dupont",
		Action:     "update",
		EntityType: "contract",
		EntityID:   entityID.String(),
		OldData:    `{"status":"actif"}`,
		NewData:    `{"status":"suspendu"}`,
		OccurredAt: ts.Format(time.RFC3339Nano),
	}

	l := FromPayload(p)

	if l.ActorID == nil || *l.ActorID != actorID {
		t.Errorf("actor id not restored: %v", l.ActorID)
	}
	if l.EntityID == nil || *l.EntityID != entityID {
		t.Errorf("entity id not restored: %v", l.EntityID)
	}
	if !l.CreatedAt.Equal(ts) {
		t.Errorf("timestamp not restored: %v", l.CreatedAt)
	}

	var oldData map[string]string
	if err := json.Unmarshal(l.OldData, &oldData); err != nil || oldData["status"] != "actif" {
		t.Errorf("old data not restored: %s", l.OldData)
	}
}

func TestFromPayloadToleratesMissingOptionalFields(t *testing.T) {
	l := FromPayload(queue.AuditRecordPayload{Action: "delete", EntityType: "client"})

	if l.ActorID != nil || l.EntityID != nil {
		t.Error("absent ids must stay nil")
	}
	if l.OldData != nil || l.NewData != nil {
		t.Error("absent snapshots must stay nil")
	}
	if l.Action != "delete" || l.EntityType != "client" {
		t.Errorf("unexpected entry: %+v", l)
	}
}
