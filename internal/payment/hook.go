package payment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// JobStateHook is invoked after a capture is settled at the provider.
// The target job state was never finalized, so the concrete transition is
// left to the installer of the hook.
type JobStateHook interface {
	JobPaid(ctx context.Context, jobID uuid.UUID) error
}

// LogJobStateHook records the transition without mutating job state.
type LogJobStateHook struct {
	Logger *slog.Logger
}

func (h *LogJobStateHook) JobPaid(ctx context.Context, jobID uuid.UUID) error {
	h.Logger.InfoContext(ctx, "Job settled", "jobId", jobID)
	return nil
}
