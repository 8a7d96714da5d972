package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/queue"
)

// AuditWorker persists audit entries enqueued by the API.
type AuditWorker struct {
	svc *audit.Service
}

func NewAuditWorker(svc *audit.Service) *AuditWorker {
	return &AuditWorker{svc: svc}
}

func (w *AuditWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AuditRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	l := audit.FromPayload(payload)
	if err := w.svc.Insert(ctx, l); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	slog.Debug("audit entry recorded", "action", l.Action, "entity_type", l.EntityType)
	return nil
}
