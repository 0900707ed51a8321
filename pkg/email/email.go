package email

import (
	"fmt"
	"net/smtp"

	"github.com/minutesdesk/minutes-manager/internal/config"
)

// SMTPSender sends plain-text mail through the configured SMTP relay. It
// satisfies the dispatch engine's Notifier seam; the engine decides content
// and timing, this package only moves bytes.
type SMTPSender struct {
	host     string
	port     string
	sender   string
	password string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SMTPSender,
		password: cfg.SMTPPassword,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := s.host + ":" + s.port

	if err := smtp.SendMail(address, auth, s.sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
