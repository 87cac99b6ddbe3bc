package sender

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogSender writes the message to the log instead of sending it. Used when
// no SMTP server is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, email Email) (SendResult, error) {
	id := "log-" + uuid.NewString()
	s.logger.Info("email (not sent, no SMTP configured)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("body_bytes", len(email.HTML)),
		zap.String("message_id", id),
	)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}
