package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/vocalia/vocalia-backend/internal/config"
)

// Mailer delivers transactional email over SMTP. Without an SMTP host it
// degrades to logging the intent, so local setups work without a relay.
type Mailer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendVerification(to, name, link string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your Vocalia account by opening the link below:</p><p><a href=%q>%s</a></p>",
		name, link, link,
	)
	return m.send(to, "Verify your Vocalia account", body)
}

func (m *Mailer) SendPasswordReset(to, name, link string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Reset your Vocalia password using the link below. It expires in one hour.</p><p><a href=%q>%s</a></p>",
		name, link, link,
	)
	return m.send(to, "Reset your Vocalia password", body)
}

func (m *Mailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to Vocalia. Your dashboard is ready whenever you are.</p>",
		name,
	)
	return m.send(to, "Welcome to Vocalia", body)
}

func (m *Mailer) send(to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		slog.Info("email delivery skipped, SMTP not configured", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)
	return d.DialAndSend(msg)
}
