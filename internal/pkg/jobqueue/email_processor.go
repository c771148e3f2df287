package jobqueue

import (
	"context"
	"fmt"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/mail"
)

// EnqueueEmail schedules msg for delivery by a worker.
func (q *Queue) EnqueueEmail(ctx context.Context, msg mail.Message) error {
	if msg.To == "" {
		return mail.ErrNoRecipient
	}
	_, err := q.EnqueueJob(ctx, JobTypeSendEmail, SendEmailJobPayloadFromMessage(msg).ToMap())
	return err
}

// SendEmailHandler delivers send_email jobs through mailer.
func SendEmailHandler(mailer mail.Mailer) HandlerFunc {
	return func(ctx context.Context, job *Job) error {
		payload, err := SendEmailJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid send_email payload: %w", err)
		}
		return mailer.Send(ctx, payload.Message())
	}
}
