package workers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Messano/brain-hr-hub/internal/contract"
)

// ContractWorker runs the periodic end-date sweep: every active
// contract whose end date has passed is moved to expired, with a
// history entry per contract.
type ContractWorker struct {
	svc *contract.Service
}

func NewContractWorker(svc *contract.Service) *ContractWorker {
	return &ContractWorker{svc: svc}
}

func (w *ContractWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	n, err := w.svc.ExpireOverdue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("contracts expired", "count", n)
	}
	return nil
}
