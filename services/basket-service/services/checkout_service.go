package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/clients"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/repository"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IncompleteCheckoutError is attached to a checkout failure that happened
// after the order row was written. The order stays PENDING for manual
// reconciliation.
type IncompleteCheckoutError struct {
	OrderID string
	Err     error
}

func (e *IncompleteCheckoutError) Error() string {
	return fmt.Sprintf("checkout incomplete for order %s: %v", e.OrderID, e.Err)
}

func (e *IncompleteCheckoutError) Unwrap() error { return e.Err }

// IncompleteOrderID returns the order left behind by a failed checkout, if
// any.
func IncompleteOrderID(err error) (string, bool) {
	var ic *IncompleteCheckoutError
	if errors.As(err, &ic) {
		return ic.OrderID, true
	}
	return "", false
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID uint) (*models.CheckoutResult, error)
}

type CheckoutOption func(*checkoutService)

// SerializePerUser rejects a second checkout for a user while one is still
// running in this process.
func SerializePerUser() CheckoutOption {
	return func(s *checkoutService) { s.serialize = true }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *checkoutService) { s.now = now }
}

func WithOrderIDs(gen func() string) CheckoutOption {
	return func(s *checkoutService) { s.newOrderID = gen }
}

type checkoutService struct {
	basket    repository.BasketItemRepository
	orders    OrderService
	stock     clients.StockClient
	identity  clients.IdentityClient
	publisher eventbus.Publisher
	caches    Caches
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger

	serialize  bool
	inFlight   sync.Map
	now        func() time.Time
	newOrderID func() string
}

func NewCheckoutService(
	basket repository.BasketItemRepository,
	orders OrderService,
	stock clients.StockClient,
	identity clients.IdentityClient,
	publisher eventbus.Publisher,
	caches Caches,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
	opts ...CheckoutOption,
) CheckoutService {
	s := &checkoutService{
		basket:     basket,
		orders:     orders,
		stock:      stock,
		identity:   identity,
		publisher:  publisher,
		caches:     caches,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newOrderID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var metricDims = map[string]string{"Service": "basket-service"}

func (s *checkoutService) Checkout(ctx context.Context, userID uint) (*models.CheckoutResult, error) {
	if s.serialize {
		if _, busy := s.inFlight.LoadOrStore(userID, struct{}{}); busy {
			return nil, apperrors.Conflict("Checkout already in progress for user %d", userID)
		}
		defer s.inFlight.Delete(userID)
	}

	res, err := s.checkout(ctx, userID)
	if err != nil {
		s.metrics.CountAsync(awspkg.MetricCheckoutsFailed, metricDims)
		s.logger.Warn("checkout failed",
			zap.Uint("user_id", userID),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	s.metrics.CountAsync(awspkg.MetricCheckoutsSucceeded, metricDims)
	return res, nil
}

func (s *checkoutService) checkout(ctx context.Context, userID uint) (*models.CheckoutResult, error) {
	// Validation: nothing below this block writes anything.
	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.basket.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load basket", err)
	}
	if len(lines) == 0 {
		return nil, apperrors.Conflict("Basket is empty for user %d", userID)
	}

	priced, snapshot, total, err := s.price(ctx, lines)
	if err != nil {
		return nil, err
	}

	// Durability point.
	order := &models.Order{
		OrderID:     s.newOrderID(),
		UserID:      userID,
		Items:       snapshot,
		TotalAmount: total,
		Status:      models.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.CountAsync(awspkg.MetricOrdersCreated, metricDims)
	// Past the order write the saga runs to the end even if the caller goes
	// away; a half-finished checkout is only recoverable by hand.
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(zap.String("order_id", order.OrderID), zap.Uint("user_id", userID))

	for _, line := range lines {
		if err := s.stock.ReduceStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.metrics.CountAsync(awspkg.MetricOrdersPendingStuck, metricDims)
			log.Error("stock reduction failed, order left pending",
				zap.Uint("product_id", line.ProductID), zap.Int("quantity", line.Quantity), zap.Error(err))
			return nil, apperrors.New(apperrors.KindOf(err),
				fmt.Sprintf("Stock reduction failed for order %s; order left PENDING", order.OrderID),
				&IncompleteCheckoutError{OrderID: order.OrderID, Err: err})
		}
	}

	evt := events.OrderCreatedEvent{
		OrderID:     order.OrderID,
		UserID:      userID,
		Email:       user.Email,
		Items:       snapshot,
		TotalAmount: total,
		Timestamp:   s.now().UTC(),
	}
	if err := eventbus.PublishJSON(ctx, s.publisher, events.OrderExchange, events.OrderCreatedKey, evt); err != nil {
		log.Error("failed to publish order created event", zap.Error(err))
	}

	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}
	clearErr := s.basket.DeleteByIDs(ctx, ids)

	invalidate(ctx, s.logger,
		evictAll(s.caches.BasketItem),
		evictKey(s.caches.BasketByUser, key(userID)),
		evictAll(s.caches.OrdersByUser),
		evictAll(s.caches.OrdersAll),
	)

	if clearErr != nil {
		log.Error("failed to clear basket after checkout", zap.Error(clearErr))
		return nil, apperrors.New(apperrors.KindInternal,
			fmt.Sprintf("Basket could not be cleared for order %s", order.OrderID),
			&IncompleteCheckoutError{OrderID: order.OrderID, Err: clearErr})
	}

	log.Info("checkout completed", zap.String("total", total.StringFixed(2)), zap.Int("lines", len(lines)))
	return &models.CheckoutResult{
		OrderID:     order.OrderID,
		UserID:      userID,
		Items:       priced,
		TotalAmount: total,
		Message:     models.CheckoutMessage,
	}, nil
}

// price fetches every product once and checks availability. It never
// mutates stock.
func (s *checkoutService) price(ctx context.Context, lines []models.BasketItem) ([]models.CheckoutLine, models.LineItems, decimal.Decimal, error) {
	priced := make([]models.CheckoutLine, 0, len(lines))
	snapshot := make(models.LineItems, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		p, err := s.stock.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}
		if p.Quantity < line.Quantity {
			return nil, nil, decimal.Zero, apperrors.Conflict(
				"Insufficient stock for product %s. Available: %d, Requested: %d", p.Name, p.Quantity, line.Quantity)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		priced = append(priced, models.CheckoutLine{
			ID:          line.ID,
			UserID:      line.UserID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			ProductName: p.Name,
			Price:       p.Price,
			LineTotal:   lineTotal,
		})
		snapshot = append(snapshot, events.OrderItem{
			ProductID:   line.ProductID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
	}
	return priced, snapshot, total, nil
}
