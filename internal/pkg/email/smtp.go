// internal/pkg/email/smtp.go
package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// SMTPSender sends mail through an SMTP relay with gomail
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender for the configured relay
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &SMTPSender{from: cfg.From, dialer: d}
}

// Send implements Sender
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	if email.TextContent != "" {
		m.SetBody("text/plain", email.TextContent)
		m.AddAlternative("text/html", email.HTMLContent)
	} else {
		m.SetBody("text/html", email.HTMLContent)
	}
	for _, path := range email.Attachments {
		m.Attach(path)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s email: %w", email.Type, err)
	}
	return nil
}

// LogSender logs mail instead of sending it. Used when no relay is configured.
type LogSender struct {
	Log logrus.FieldLogger
}

// Send implements Sender
func (s *LogSender) Send(_ context.Context, email *Email) error {
	s.Log.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"type":    email.Type,
	}).Info("email delivery disabled, message dropped")
	return nil
}
