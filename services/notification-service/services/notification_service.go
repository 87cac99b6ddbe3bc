package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/sender"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxAttempts = 3

var recipientCheck = validator.New()

type NotificationService interface {
	UserRegistered(ctx context.Context, evt events.UserRegisteredEvent) error
	OrderCreated(ctx context.Context, evt events.OrderCreatedEvent) error
	InvoiceCreated(ctx context.Context, evt events.InvoiceCreatedEvent) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type eventConfig struct {
	tmplFile string
	subject  func(data any) string
}

var eventConfigs = map[string]eventConfig{
	models.TypeUserRegistered: {
		tmplFile: "templates/welcome.html",
		subject:  func(any) string { return "Welcome to NovaMart!" },
	},
	models.TypeOrderCreated: {
		tmplFile: "templates/order_created.html",
		subject: func(data any) string {
			return "Order Confirmed: " + data.(events.OrderCreatedEvent).OrderID
		},
	},
	models.TypeInvoiceCreated: {
		tmplFile: "templates/invoice_created.html",
		subject: func(data any) string {
			return "Your invoice " + data.(events.InvoiceCreatedEvent).InvoiceSlug
		},
	},
}

type Option func(*notificationService)

// WithBackoff sets the wait unit between attempts; attempt n waits n units.
func WithBackoff(d time.Duration) Option {
	return func(s *notificationService) { s.backoff = d }
}

type notificationService struct {
	repo      repository.NotificationRepository
	email     sender.EmailSender
	templates map[string]*template.Template
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
	backoff   time.Duration
}

func NewNotificationService(
	repo repository.NotificationRepository,
	email sender.EmailSender,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
	opts ...Option,
) (NotificationService, error) {
	tmpls := make(map[string]*template.Template, len(eventConfigs))
	for eventType, cfg := range eventConfigs {
		tmpl, err := template.ParseFS(templateFS, cfg.tmplFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", eventType, err)
		}
		tmpls[eventType] = tmpl
	}
	s := &notificationService{
		repo:      repo,
		email:     email,
		templates: tmpls,
		metrics:   metrics,
		logger:    logger,
		backoff:   time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *notificationService) UserRegistered(ctx context.Context, evt events.UserRegisteredEvent) error {
	return s.notify(ctx, models.TypeUserRegistered, evt.UserID, evt.Email, evt)
}

func (s *notificationService) OrderCreated(ctx context.Context, evt events.OrderCreatedEvent) error {
	return s.notify(ctx, models.TypeOrderCreated, evt.UserID, evt.Email, evt)
}

func (s *notificationService) InvoiceCreated(ctx context.Context, evt events.InvoiceCreatedEvent) error {
	return s.notify(ctx, models.TypeInvoiceCreated, evt.UserID, evt.Email, evt)
}

// notify renders and sends one email. A missing or malformed recipient is
// skipped with a warning and is not an error.
func (s *notificationService) notify(ctx context.Context, eventType string, userID uint, to string, data any) error {
	if to == "" {
		s.logger.Warn("missing recipient, skipping notification",
			zap.String("event", eventType),
			zap.Uint("user_id", userID),
		)
		return nil
	}
	if err := recipientCheck.Var(to, "email"); err != nil {
		s.logger.Warn("malformed recipient, skipping notification",
			zap.String("event", eventType),
			zap.Uint("user_id", userID),
			zap.String("recipient", to),
		)
		return nil
	}

	cfg := eventConfigs[eventType]
	var buf bytes.Buffer
	if err := s.templates[eventType].Execute(&buf, data); err != nil {
		return fmt.Errorf("template render failed: %w", err)
	}

	s.sendWithRetry(ctx, &models.NotificationLog{
		UserID:    userID,
		Recipient: to,
		Type:      eventType,
		Channel:   models.ChannelEmail,
		Subject:   cfg.subject(data),
	}, buf.String())
	return nil
}

func (s *notificationService) sendWithRetry(ctx context.Context, entry *models.NotificationLog, body string) {
	var (
		lastErr error
		result  sender.SendResult
	)

attempts:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		entry.Attempts = attempt
		if attempt > 1 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break attempts
			case <-time.After(time.Duration(attempt-1) * s.backoff):
			}
		}

		result, lastErr = s.email.Send(ctx, sender.Email{To: entry.Recipient, Subject: entry.Subject, HTML: body})
		if lastErr == nil {
			break
		}
		s.logger.Warn("send attempt failed",
			zap.String("event", entry.Type),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	entry.Status = models.StatusSent
	entry.MessageID = result.MessageID
	metric := awspkg.MetricNotificationsSent
	if lastErr != nil {
		entry.Status = models.StatusFailed
		entry.Error = lastErr.Error()
		metric = awspkg.MetricNotificationsFail
	}
	s.metrics.CountAsync(metric, map[string]string{"Service": "notification-service", "Type": entry.Type})

	s.logger.Info("notification processed",
		zap.String("event", entry.Type),
		zap.String("status", entry.Status),
		zap.Int("attempts", entry.Attempts),
		zap.String("message_id", entry.MessageID),
	)

	// The log is kept even when the delivery context was cancelled.
	if err := s.repo.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to save notification log", zap.Error(err))
	}
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	filter.Normalize()
	return s.repo.GetLogs(ctx, filter)
}
