package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/mailer"
	"github.com/clotsync/clotsync-api/pkg/jobs"
)

// NewEmailJobHandler returns the queue handler that delivers notification
// emails through the configured mailer.
func NewEmailJobHandler(m mailer.Mailer, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(EmailPayload)
		if !ok {
			logger.Error("unexpected email job payload", zap.String("job_id", job.ID))
			return nil
		}
		if err := m.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
			return fmt.Errorf("deliver notification email: %w", err)
		}
		return nil
	}
}
