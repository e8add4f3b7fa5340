package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/votetrack/votetrack/config"
)

// Mailer delivers account confirmation emails. Delivery is best-effort:
// callers fire-and-forget and a failure never blocks registration.
type Mailer interface {
	SendConfirmation(email, token string) error
}

// SMTPMailer sends the confirmation link over plain SMTP.
type SMTPMailer struct {
	cfg *config.Config
	log *zap.Logger
}

func NewSMTP(cfg *config.Config, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendConfirmation(email, token string) error {
	confirmURL := fmt.Sprintf("%s/%s", m.cfg.ConfirmBase, token)
	body := fmt.Sprintf("To: %s\r\nSubject: Confirm your voteTrack account\r\n\r\n"+
		"Click the link below to confirm your email address:\r\n%s\r\n", email, confirmURL)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{email}, []byte(body)); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	m.log.Info("confirmation email sent", zap.String("email", email))
	return nil
}

// LogMailer stands in when no SMTP host is configured; it logs the link
// instead of delivering it. Also used by tests.
type LogMailer struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendConfirmation(email, token string) error {
	m.log.Info("confirmation email (not delivered, no SMTP host configured)",
		zap.String("email", email),
		zap.String("token", token))
	return nil
}
