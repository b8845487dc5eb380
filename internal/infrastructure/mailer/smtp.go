// Package mailer delivers token-bearing notification emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memberdesk/accounts-api/internal/core/domain"
)

// Config holds SMTP connection and addressing settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public address links in the email point at,
	// e.g. https://portal.example.com.
	BaseURL string
}

// Mailer implements ports.Notifier over plain SMTP. Sends are synchronous;
// the caller decides whether a failure is fatal.
type Mailer struct {
	cfg Config
	log zerolog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) Send(ctx context.Context, toEmail, recipientName, token string, kind domain.TokenKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := m.render(recipientName, token, kind)
	msg := buildMessage(m.cfg.From, toEmail, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}

	m.log.Info().Str("kind", string(kind)).Msg("notification sent")
	return nil
}

func (m *Mailer) render(recipientName, token string, kind domain.TokenKind) (subject, body string) {
	switch kind {
	case domain.TokenKindPasswordReset:
		subject = "Reset your password"
		body = fmt.Sprintf(
			"Hi %s,\r\n\r\nA password reset was requested for your account. "+
				"The link below is valid for one hour and can be used once:\r\n\r\n%s/reset-password?token=%s\r\n\r\n"+
				"If you did not request this, you can ignore this email.\r\n",
			recipientName, m.cfg.BaseURL, token)
	default:
		subject = "Verify your email address"
		body = fmt.Sprintf(
			"Hi %s,\r\n\r\nWelcome! Confirm your email address by opening the link below:\r\n\r\n"+
				"%s/verify-email?token=%s\r\n",
			recipientName, m.cfg.BaseURL, token)
	}
	return subject, body
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
