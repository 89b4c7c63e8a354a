// Package alerts dispatches email notifications for suspicious uploads.
package alerts

import (
	"gopkg.in/gomail.v2"

	"github.com/clinicware/clinic-backend/config"
)

// Notifier sends an out-of-band alert to clinic admins. Callers treat
// delivery as fire-and-forget: a failed alert never fails the action that
// triggered it.
type Notifier interface {
	Notify(subject, body string) error
}

// NewFromConfig returns an SMTP-backed notifier, or a no-op one when SMTP
// is not configured.
func NewFromConfig(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" || cfg.AlertEmail == "" {
		return noopNotifier{}
	}
	from := cfg.SMTPUser
	if from == "" {
		from = "noreply@example.com"
	}
	return &smtpNotifier{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: from,
		to:   cfg.AlertEmail,
	}
}

type smtpNotifier struct {
	host string
	port int
	user string
	pass string
	from string
	to   string
}

func (n *smtpNotifier) Notify(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.host, n.port, n.user, n.pass)
	return d.DialAndSend(m)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string) error { return nil }
