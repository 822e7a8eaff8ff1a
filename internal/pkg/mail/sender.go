// Package mail renders transactional emails and hands them to a delivery transport.
package mail

import (
	"context"

	"github.com/celumarket/celumarket/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

// Message is a fully rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result reports how a message was handled. Simulated is set by the no-op
// transport, which accepts every message without delivering it.
type Result struct {
	Delivered bool   `json:"delivered"`
	Simulated bool   `json:"simulated"`
	ID        string `json:"id,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
	Name() string
}

// NewSenderFromEnv picks the HTTP API transport when MAIL_API_KEY is set, SMTP
// when SMTP_HOST is set, and the no-op transport otherwise.
func NewSenderFromEnv() Sender {
	from := env.GetEnv("MAIL_FROM", "CeluMarket <no-reply@celumarket.local>")

	if key := env.GetEnv("MAIL_API_KEY", ""); key != "" {
		log.Infof("[Mail] using API transport")
		return NewAPISender(APIConfig{
			Endpoint: env.GetEnv("MAIL_API_URL", DefaultAPIEndpoint),
			APIKey:   key,
			From:     from,
		})
	}

	if host := env.GetEnv("SMTP_HOST", ""); host != "" {
		log.Infof("[Mail] using SMTP transport %s", host)
		return NewSMTPSender(SMTPConfig{
			Host:     host,
			Port:     env.GetEnv("SMTP_PORT", "587"),
			Username: env.GetEnv("SMTP_USERNAME", ""),
			Password: env.GetEnv("SMTP_PASSWORD", ""),
			From:     env.GetEnv("SMTP_SENDER", from),
		})
	}

	log.Warnf("[Mail] no transport configured, emails are simulated")
	return NoopSender{}
}

// NoopSender accepts every message and reports simulated success.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	log.Infof("[Mail] simulated email to %s: %s", msg.To, msg.Subject)
	return Result{Simulated: true}, nil
}

func (NoopSender) Name() string { return "noop" }
