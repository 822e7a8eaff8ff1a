package jobqueue

import (
	"context"
	"fmt"

	"github.com/celumarket/celumarket/internal/pkg/mail"
)

// EmailDeliverer renders and sends one templated email.
type EmailDeliverer interface {
	Deliver(ctx context.Context, tpl mail.Template, to string, data mail.Data) (mail.Result, error)
}

// EnqueueEmail schedules a templated email for background delivery.
func (q *Queue) EnqueueEmail(ctx context.Context, tpl mail.Template, to string, data mail.Data) (*Job, error) {
	if !tpl.Valid() {
		return nil, fmt.Errorf("unknown email template %q", tpl)
	}
	if to == "" {
		return nil, fmt.Errorf("email job without recipient")
	}
	return q.EnqueueJob(ctx, JobTypeSendEmail, EmailPayload{Template: tpl, To: to, Data: data})
}

// NewEmailHandler processes JobTypeSendEmail jobs through deliverer.
func NewEmailHandler(deliverer EmailDeliverer) Handler {
	return func(ctx context.Context, job *Job) error {
		var payload EmailPayload
		if err := job.Decode(&payload); err != nil {
			return fmt.Errorf("invalid email payload: %w", err)
		}
		if !payload.Template.Valid() {
			return fmt.Errorf("unknown email template %q", payload.Template)
		}
		_, err := deliverer.Deliver(ctx, payload.Template, payload.To, payload.Data)
		return err
	}
}
