package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"inventario/internal/config"
)

// Mailer wraps SMTP configuration for sending inventory exports by mail.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendExport mails an inventory export as an in-memory attachment. The
// attachment is never written to disk; workers generate it and hand the
// bytes straight here.
func (m *Mailer) SendExport(to, subject, body, filename, mimeType string, data []byte) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(data) > 0 {
		if _, err := e.Attach(bytes.NewReader(data), filename, mimeType); err != nil {
			return fmt.Errorf("mailer: adjuntar exportación: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
