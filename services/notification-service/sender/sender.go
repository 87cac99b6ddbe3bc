// Package sender delivers rendered notifications.
package sender

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrHeaderInjection = errors.New("header contains line break")

// Email is one rendered HTML message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Check rejects values that would break out of their header line.
func (e Email) Check() error {
	if e.To == "" {
		return errors.New("recipient is empty")
	}
	if strings.ContainsAny(e.To, "\r\n") || strings.ContainsAny(e.Subject, "\r\n") {
		return ErrHeaderInjection
	}
	return nil
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	Send(ctx context.Context, email Email) (SendResult, error)
}
