package services_test

import (
	"context"
	"testing"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func order(orderID string, userID uint, status models.OrderStatus, total string) models.Order {
	return models.Order{OrderID: orderID, UserID: userID, Status: status, TotalAmount: price(total)}
}

func newOrderService(repo *fakeOrderRepo) services.OrderService {
	caches, _ := newCaches()
	return services.NewOrderService(repo, caches, zap.NewNop())
}

func TestGetByOrderID_SecondReadIsCacheHit(t *testing.T) {
	repo := newFakeOrderRepo(order("abc", 7, models.StatusPending, "45.00"))
	svc := newOrderService(repo)
	ctx := context.Background()

	first, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)
	second, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.finds)
}

func TestGetByOrderID_CachedReadKeepsCents(t *testing.T) {
	o := order("abc", 7, models.StatusPending, "45.00")
	o.Items = models.LineItems{{ProductID: 3, ProductName: "Mug", Quantity: 2, Price: price("10.00")}}
	repo := newFakeOrderRepo(o)
	svc := newOrderService(repo)
	ctx := context.Background()

	_, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)
	cached, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 1, repo.finds)

	assert.Equal(t, int32(-2), cached.TotalAmount.Exponent())
	require.Len(t, cached.Items, 1)
	assert.Equal(t, int32(-2), cached.Items[0].Price.Exponent())

	list, err := svc.GetByUserID(ctx, 7)
	require.NoError(t, err)
	cachedList, err := svc.GetByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, list, cachedList)
}

func TestGetByOrderID_NotFound(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo())

	_, err := svc.GetByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Order not found: missing", apperrors.From(err).Message)
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	repo := newFakeOrderRepo(order("abc", 7, models.StatusPending, "45.00"))
	svc := newOrderService(repo)
	ctx := context.Background()

	o, err := svc.UpdateStatus(ctx, "abc", "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, o.Status)

	o, err = svc.UpdateStatus(ctx, "abc", "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
}

func TestUpdateStatus_RejectsInvalid(t *testing.T) {
	cases := map[string]struct {
		from models.OrderStatus
		to   string
		want error
	}{
		"unknown status":          {models.StatusPending, "SHIPPED", apperrors.ErrBadRequest},
		"skip confirmation":       {models.StatusPending, "DELIVERED", apperrors.ErrConflict},
		"back to pending":         {models.StatusConfirmed, "PENDING", apperrors.ErrConflict},
		"out of delivered":        {models.StatusDelivered, "CONFIRMED", apperrors.ErrConflict},
		"delivered to cancelled":  {models.StatusDelivered, "CANCELLED", apperrors.ErrConflict},
		"out of cancelled":        {models.StatusCancelled, "PENDING", apperrors.ErrConflict},
		"cancelled to confirmed":  {models.StatusCancelled, "CONFIRMED", apperrors.ErrConflict},
		"same status is rejected": {models.StatusPending, "PENDING", apperrors.ErrConflict},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newFakeOrderRepo(order("abc", 7, tc.from, "1.00"))
			svc := newOrderService(repo)

			_, err := svc.UpdateStatus(context.Background(), "abc", tc.to)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.from, repo.orders["abc"].Status)
		})
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		svc := newOrderService(newFakeOrderRepo(order("abc", 7, models.StatusPending, "1.00")))
		o, err := svc.Cancel(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, o.Status)
	})

	t.Run("confirmed", func(t *testing.T) {
		svc := newOrderService(newFakeOrderRepo(order("abc", 7, models.StatusConfirmed, "1.00")))
		_, err := svc.Cancel(ctx, "abc")
		require.NoError(t, err)
	})

	t.Run("delivered", func(t *testing.T) {
		svc := newOrderService(newFakeOrderRepo(order("abc", 7, models.StatusDelivered, "1.00")))
		_, err := svc.Cancel(ctx, "abc")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, "Delivered orders cannot be cancelled", apperrors.From(err).Message)
	})

	t.Run("already cancelled", func(t *testing.T) {
		svc := newOrderService(newFakeOrderRepo(order("abc", 7, models.StatusCancelled, "1.00")))
		_, err := svc.Cancel(ctx, "abc")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("missing", func(t *testing.T) {
		svc := newOrderService(newFakeOrderRepo())
		_, err := svc.Cancel(ctx, "nope")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUpdateStatus_EvictsCachedReads(t *testing.T) {
	repo := newFakeOrderRepo(order("abc", 7, models.StatusPending, "45.00"))
	svc := newOrderService(repo)
	ctx := context.Background()

	_, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)
	_, err = svc.GetByUserID(ctx, 7)
	require.NoError(t, err)
	_, err = svc.GetAll(ctx)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "abc")
	require.NoError(t, err)

	o, err := svc.GetByOrderID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, o.Status)

	byUser, err := svc.GetByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, byUser[0].Status)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, all[0].Status)
}

func TestCreate_DefaultsToPendingAndEvictsLists(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo)
	ctx := context.Background()

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	o := &models.Order{OrderID: "abc", UserID: 7, TotalAmount: price("10.00")}
	require.NoError(t, svc.Create(ctx, o))
	assert.Equal(t, models.StatusPending, o.Status)

	all, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetByStatusAndStats(t *testing.T) {
	repo := newFakeOrderRepo(
		order("a", 1, models.StatusPending, "10.00"),
		order("b", 1, models.StatusPending, "5.50"),
		order("c", 2, models.StatusDelivered, "20.00"),
		order("d", 3, models.StatusCancelled, "1.00"),
	)
	svc := newOrderService(repo)
	ctx := context.Background()

	pending, err := svc.GetByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.GetByStatus(ctx, "lost")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	n, err := svc.CountByStatus(ctx, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.PendingOrders)
	assert.Equal(t, int64(0), stats.ConfirmedOrders)
	assert.Equal(t, int64(1), stats.DeliveredOrders)
	assert.Equal(t, int64(1), stats.CancelledOrders)
	assert.True(t, price("36.50").Equal(stats.TotalRevenue))
}
