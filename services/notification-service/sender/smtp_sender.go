package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"
)

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@novamart.local"`
}

type SMTPSender struct {
	cfg SMTPConfig
	// send is smtp.SendMail outside tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP_HOST not set")
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *SMTPSender) Send(ctx context.Context, email Email) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}
	if err := email.Check(); err != nil {
		return SendResult{}, fmt.Errorf("smtp: %w", err)
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	msg := []byte(
		"From: " + s.cfg.From + "\r\n" +
			"To: " + email.To + "\r\n" +
			"Subject: " + email.Subject + "\r\n" +
			"Message-ID: " + id + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			email.HTML,
	)

	if err := s.send(net.JoinHostPort(s.cfg.Host, s.cfg.Port), auth, s.cfg.From, []string{email.To}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}
