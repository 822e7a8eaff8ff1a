package mail

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/celumarket/celumarket/internal/pkg/metrics"
)

// Mailer renders a template and delivers it through the configured sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
}

func NewMailer(sender Sender, renderer *Renderer) *Mailer {
	if sender == nil {
		sender = NoopSender{}
	}
	return &Mailer{sender: sender, renderer: renderer}
}

func (m *Mailer) Deliver(ctx context.Context, tpl Template, to string, data Data) (Result, error) {
	msg, err := m.renderer.Render(tpl, to, data)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(m.sender.Name(), "render_error").Inc()
		return Result{}, err
	}

	res, err := m.sender.Send(ctx, msg)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(m.sender.Name(), "error").Inc()
		log.Errorf("[Mail] failed to send %s to %s: %v", tpl, to, err)
		return Result{}, err
	}

	outcome := "delivered"
	if res.Simulated {
		outcome = "simulated"
	}
	metrics.EmailsSent.WithLabelValues(m.sender.Name(), outcome).Inc()
	return res, nil
}
