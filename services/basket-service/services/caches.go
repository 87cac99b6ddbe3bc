package services

import (
	"context"
	"fmt"

	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"go.uber.org/zap"
)

// Caches holds every cache namespace the basket service owns. One instance
// is built in main and shared by the services below.
type Caches struct {
	BasketItem     *cache.Cache[models.BasketItem]
	BasketByUser   *cache.Cache[[]models.BasketItem]
	Order          *cache.Cache[models.Order]
	OrdersByUser   *cache.Cache[[]models.Order]
	OrdersAll      *cache.Cache[[]models.Order]
	WishlistByUser *cache.Cache[[]models.WishlistItem]
}

func NewCaches(store cache.Store, opts ...cache.Option) Caches {
	return Caches{
		BasketItem:     cache.New[models.BasketItem](store, cache.BasketItem, opts...),
		BasketByUser:   cache.New[[]models.BasketItem](store, cache.BasketByUser, opts...),
		Order:          cache.New[models.Order](store, cache.Order, opts...),
		OrdersByUser:   cache.New[[]models.Order](store, cache.OrdersByUser, opts...),
		OrdersAll:      cache.New[[]models.Order](store, cache.OrdersAll, opts...),
		WishlistByUser: cache.New[[]models.WishlistItem](store, cache.WishlistByUser, opts...),
	}
}

func key(id uint) string { return fmt.Sprint(id) }

// invalidate runs each eviction in order. A failed eviction is logged and
// does not stop the rest.
func invalidate(ctx context.Context, logger *zap.Logger, evictions ...func(context.Context) error) {
	for _, evict := range evictions {
		if err := evict(ctx); err != nil {
			logger.Error("cache invalidation failed", zap.Error(err))
		}
	}
}

func evictKey[V any](c *cache.Cache[V], k string) func(context.Context) error {
	return func(ctx context.Context) error { return c.Evict(ctx, k) }
}

func evictAll[V any](c *cache.Cache[V]) func(context.Context) error {
	return c.EvictAll
}

func putKey[V any](c *cache.Cache[V], k string, v V) func(context.Context) error {
	return func(ctx context.Context) error { return c.Put(ctx, k, v) }
}
