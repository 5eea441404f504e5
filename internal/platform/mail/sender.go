package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"alumni_connect/internal/domain/model"
)

type Sender interface {
	Send(ctx context.Context, msg *model.MailMessage) error
}

// SMTPSender delivers through a plain SMTP relay, with PLAIN auth when a username is set.
type SMTPSender struct {
	Addr     string
	From     string
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, msg *model.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.Username != "" {
		host := s.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.Username, s.Password, host)
	}
	if err := smtp.SendMail(s.Addr, auth, s.From, []string{msg.To}, compose(s.From, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func compose(from string, msg *model.MailMessage) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogSender prints messages instead of sending them. Used when SMTP_ADDR is empty.
type LogSender struct{}

// The body is never logged; reset mails carry live tokens.
func (LogSender) Send(_ context.Context, msg *model.MailMessage) error {
	log.Printf("INFO: [MAIL] id=%s kind=%s to=%s subject=%q body_bytes=%d", msg.ID, msg.Kind, msg.To, msg.Subject, len(msg.Body))
	return nil
}

// NewSender picks SMTP when an address is configured.
func NewSender(addr, from, username, password string) Sender {
	if addr == "" {
		return LogSender{}
	}
	return &SMTPSender{Addr: addr, From: from, Username: username, Password: password}
}
