package utils

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Mailer sends plain-text mail over SMTP. When no server is configured it
// logs the message instead of failing, so local setups work without an
// SMTP account.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		Host:     GetEnv("MAIL_SERVER", ""),
		Port:     GetEnvInt("MAIL_PORT", 587),
		Username: GetEnv("MAIL_USERNAME", ""),
		Password: GetEnv("MAIL_PASSWORD", ""),
		From:     GetEnv("MAIL_FROM", ""),
		FromName: GetEnv("MAIL_FROM_NAME", "Campus Exchange"),
	}
}

func (m *Mailer) configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.configured() {
		log.Info().
			Str("to", to).
			Str("subject", subject).
			Str("body", body).
			Msg("email not configured, dropping message")
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.FromName, m.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
