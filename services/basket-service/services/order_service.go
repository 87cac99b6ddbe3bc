package services

import (
	"context"
	"errors"

	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/repository"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, o *models.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByStatus(ctx context.Context, status string) ([]models.Order, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	Cancel(ctx context.Context, orderID string) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

type orderService struct {
	repo   repository.OrderRepository
	caches Caches
	logger *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, caches Caches, logger *zap.Logger) OrderService {
	return &orderService{repo: repo, caches: caches, logger: logger}
}

func orderNotFound(orderID string) error {
	return apperrors.NotFound("Order not found: %s", orderID)
}

func parseStatus(s string) (models.OrderStatus, error) {
	st, err := models.ParseOrderStatus(s)
	if err != nil {
		return "", apperrors.BadRequest("Invalid order status: %s", s)
	}
	return st, nil
}

// Create stores a new order. Orders start PENDING unless the caller set a
// status.
func (s *orderService) Create(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.StatusPending
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return apperrors.Internal("failed to save order", err)
	}
	invalidate(ctx, s.logger, evictAll(s.caches.OrdersByUser), evictAll(s.caches.OrdersAll))
	return nil
}

func (s *orderService) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := s.caches.Order.GetOrLoad(ctx, orderID, func(ctx context.Context) (models.Order, error) {
		o, err := s.repo.FindByOrderID(ctx, orderID)
		if err != nil {
			return models.Order{}, err
		}
		return *o, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}
	o.Normalize()
	return &o, nil
}

func (s *orderService) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.caches.OrdersByUser.GetOrLoad(ctx, key(userID), func(ctx context.Context) ([]models.Order, error) {
		return s.repo.FindByUserID(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}
	return models.NormalizeOrders(orders), nil
}

func (s *orderService) GetAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.caches.OrdersAll.GetOrLoad(ctx, cache.AllKey, s.repo.FindAll)
	if err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}
	return models.NormalizeOrders(orders), nil
}

func (s *orderService) GetByStatus(ctx context.Context, status string) ([]models.Order, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.FindByStatus(ctx, st)
	if err != nil {
		return nil, apperrors.Internal("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) CountByStatus(ctx context.Context, status string) (int64, error) {
	st, err := parseStatus(status)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.CountByStatus(ctx, st)
	if err != nil {
		return 0, apperrors.Internal("failed to count orders", err)
	}
	return n, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, next)
}

// Cancel moves any non-terminal order to CANCELLED. Stock is not restored.
func (s *orderService) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	return s.transition(ctx, orderID, models.StatusCancelled)
}

func (s *orderService) transition(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	o, err := s.repo.FindByOrderID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load order", err)
	}

	switch {
	case o.Status == models.StatusDelivered && next == models.StatusCancelled:
		return nil, apperrors.Conflict("Delivered orders cannot be cancelled")
	case o.Status == models.StatusCancelled && next == models.StatusCancelled:
		return nil, apperrors.Conflict("Order %s is already cancelled", orderID)
	case !o.Status.CanTransitionTo(next):
		return nil, apperrors.Conflict("Invalid status transition from %s to %s", o.Status, next)
	}

	ok, err := s.repo.UpdateStatus(ctx, orderID, o.Status, next)
	if err != nil {
		return nil, apperrors.Internal("failed to update order status", err)
	}
	if !ok {
		return nil, apperrors.Conflict("Order %s changed status concurrently, retry", orderID)
	}

	previous := o.Status
	o.Status = next
	invalidate(ctx, s.logger,
		evictKey(s.caches.Order, orderID),
		evictAll(s.caches.OrdersByUser),
		evictAll(s.caches.OrdersAll),
	)
	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)
	return o, nil
}

func (s *orderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	total, revenue, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to compute order totals", err)
	}
	stats := &models.OrderStats{TotalOrders: total, TotalRevenue: revenue}
	counts := map[models.OrderStatus]*int64{
		models.StatusPending:   &stats.PendingOrders,
		models.StatusConfirmed: &stats.ConfirmedOrders,
		models.StatusDelivered: &stats.DeliveredOrders,
		models.StatusCancelled: &stats.CancelledOrders,
	}
	for _, st := range models.AllStatuses {
		n, err := s.repo.CountByStatus(ctx, st)
		if err != nil {
			return nil, apperrors.Internal("failed to count orders", err)
		}
		*counts[st] = n
	}
	return stats, nil
}
