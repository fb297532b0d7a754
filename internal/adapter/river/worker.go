package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// StatusChangeWorker processes committed status changes from the River
// queue. It keeps the append-only audit log of transitions; the
// synchronous fan-out to UISP and n8n happens in the orchestrator, not
// here.
type StatusChangeWorker struct {
	river.WorkerDefaults[StatusChangeJobArgs]
}

// Work processes a single status change job.
func (w *StatusChangeWorker) Work(ctx context.Context, job *river.Job[StatusChangeJobArgs]) error {
	slog.InfoContext(ctx, "customer status changed",
		"tenant_id", job.Args.TenantID,
		"customer_id", job.Args.CustomerID,
		"previous_status", job.Args.PreviousStatus,
		"status", job.Args.Status,
		"reason", job.Args.Reason,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
