// Package mailer delivers welcome emails consumed from the registration
// event stream.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers a single welcome email.
type Sender interface {
	SendWelcome(ctx context.Context, to string) error
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

// SendWelcome sends the welcome email to a freshly registered address.
func (s *SMTPSender) SendWelcome(ctx context.Context, to string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}

	msg.Subject("Welcome to CodeVenture!")
	msg.SetBodyString(mail.TypeTextHTML, welcomeBody(to))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}

	return nil
}

func welcomeBody(email string) string {
	return fmt.Sprintf(
		`<html><body><h1>Welcome to CodeVenture!</h1><p>Your account %s is ready.</p></body></html>`,
		email,
	)
}
