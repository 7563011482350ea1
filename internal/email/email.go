// Package email delivers transactional mail over SMTP.
package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/testra/backoffice-api/internal/config"
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.EmailConfig) Sender {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}

// AlertBody renders the simple HTML shell used for mirrored alert
// notifications.
func AlertBody(title, message string) string {
	return fmt.Sprintf(`<html><body>
<h2>%s</h2>
<p>%s</p>
<p style="color:#888;font-size:12px">Sent by the Testra back office.</p>
</body></html>`, title, message)
}
