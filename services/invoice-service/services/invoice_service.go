package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvoiceService interface {
	// CreateFromOrder records an invoice for an order and announces it. It
	// does not deduplicate: the same event twice yields two invoices.
	CreateFromOrder(ctx context.Context, evt events.OrderCreatedEvent) (*models.Invoice, error)
	Get(ctx context.Context, id uint) (*models.Invoice, error)
	GetByOrderID(ctx context.Context, orderID string) ([]models.Invoice, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Invoice, error)
	GetAll(ctx context.Context) ([]models.Invoice, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Caches struct {
	Invoice *cache.Cache[models.Invoice]
	ByUser  *cache.Cache[[]models.Invoice]
	ByOrder *cache.Cache[[]models.Invoice]
	All     *cache.Cache[[]models.Invoice]
}

func NewCaches(store cache.Store, opts ...cache.Option) Caches {
	return Caches{
		Invoice: cache.New[models.Invoice](store, cache.Invoice, opts...),
		ByUser:  cache.New[[]models.Invoice](store, cache.InvoicesByUser, opts...),
		ByOrder: cache.New[[]models.Invoice](store, cache.InvoicesByOrder, opts...),
		All:     cache.New[[]models.Invoice](store, cache.InvoicesAll, opts...),
	}
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	caches    Caches
	publisher eventbus.Publisher
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
	now       func() time.Time
}

func NewInvoiceService(repo repository.InvoiceRepository, caches Caches, publisher eventbus.Publisher, metrics *awspkg.MetricsClient, logger *zap.Logger) InvoiceService {
	return &invoiceService{
		repo:      repo,
		caches:    caches,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *invoiceService) CreateFromOrder(ctx context.Context, evt events.OrderCreatedEvent) (*models.Invoice, error) {
	inv := &models.Invoice{
		InvoiceSlug: models.NewSlug(s.now()),
		OrderID:     evt.OrderID,
		UserID:      evt.UserID,
		Email:       evt.Email,
		Items:       evt.Items,
		TotalAmount: evt.TotalAmount,
		Status:      models.StatusCreated,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, apperrors.Internal("failed to save invoice", err)
	}

	s.evict(ctx, s.caches.ByUser.Evict(ctx, fmt.Sprint(inv.UserID)))
	s.evict(ctx, s.caches.ByOrder.Evict(ctx, inv.OrderID))
	s.evict(ctx, s.caches.All.EvictAll(ctx))
	s.metrics.CountAsync(awspkg.MetricInvoicesCreated, map[string]string{"Service": "invoice-service"})

	log := s.logger.With(zap.String("order_id", inv.OrderID), zap.String("invoice_slug", inv.InvoiceSlug))
	log.Info("invoice created", zap.Uint("invoice_id", inv.ID))

	out := events.InvoiceCreatedEvent{
		InvoiceID:   inv.ID,
		OrderID:     inv.OrderID,
		UserID:      inv.UserID,
		Email:       inv.Email,
		TotalAmount: inv.TotalAmount,
		Items:       inv.Items,
		InvoiceSlug: inv.InvoiceSlug,
		Timestamp:   s.now().UTC(),
	}
	if err := eventbus.PublishJSON(ctx, s.publisher, events.InvoiceExchange, events.InvoiceCreatedKey, out); err != nil {
		log.Error("failed to publish invoice created event", zap.Error(err))
	}
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	inv, err := s.caches.Invoice.GetOrLoad(ctx, fmt.Sprint(id), func(ctx context.Context) (models.Invoice, error) {
		inv, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return models.Invoice{}, err
		}
		return *inv, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Invoice not found with id: %d", id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load invoice", err)
	}
	inv.Normalize()
	return &inv, nil
}

func (s *invoiceService) GetByOrderID(ctx context.Context, orderID string) ([]models.Invoice, error) {
	invoices, err := s.caches.ByOrder.GetOrLoad(ctx, orderID, func(ctx context.Context) ([]models.Invoice, error) {
		return s.repo.FindByOrderID(ctx, orderID)
	})
	if err != nil {
		return nil, apperrors.Internal("failed to load invoices", err)
	}
	if len(invoices) == 0 {
		return nil, apperrors.NotFound("Invoice not found for order: %s", orderID)
	}
	return models.NormalizeInvoices(invoices), nil
}

func (s *invoiceService) GetByUserID(ctx context.Context, userID uint) ([]models.Invoice, error) {
	invoices, err := s.caches.ByUser.GetOrLoad(ctx, fmt.Sprint(userID), func(ctx context.Context) ([]models.Invoice, error) {
		return s.repo.FindByUserID(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.Internal("failed to load invoices", err)
	}
	return models.NormalizeInvoices(invoices), nil
}

func (s *invoiceService) GetAll(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.caches.All.GetOrLoad(ctx, cache.AllKey, s.repo.FindAll)
	if err != nil {
		return nil, apperrors.Internal("failed to list invoices", err)
	}
	return models.NormalizeInvoices(invoices), nil
}

func (s *invoiceService) Stats(ctx context.Context) (*models.Stats, error) {
	n, total, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to compute invoice totals", err)
	}
	return &models.Stats{TotalInvoices: n, TotalAmount: total}, nil
}

func (s *invoiceService) evict(_ context.Context, err error) {
	if err != nil {
		s.logger.Error("cache invalidation failed", zap.Error(err))
	}
}
