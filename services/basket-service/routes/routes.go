package routes

import (
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Basket   *controllers.BasketController
	Wishlist *controllers.WishlistController
	Orders   *controllers.OrderController
}

// CheckoutLimit budgets checkouts per user. Every request reaches this
// service through the gateway, so the client IP would put all users in one
// bucket.
func CheckoutLimit(rl *middleware.RateLimiter) gin.HandlerFunc {
	return middleware.RateLimit(rl, func(c *gin.Context) string { return c.Param("userId") })
}

// RegisterRoutes mounts every basket-service route. checkoutLimit runs only
// on the checkout endpoint.
func RegisterRoutes(r *gin.Engine, ctl Controllers, adminGuard, checkoutLimit gin.HandlerFunc) {
	basket := r.Group("/basket-items")
	{
		basket.POST("", ctl.Basket.AddItem)
		basket.GET("", ctl.Basket.GetItems)
		basket.GET("/:id", ctl.Basket.GetItem)
		basket.GET("/user/:userId", ctl.Basket.GetUserBasket)
		basket.PUT("/:id", ctl.Basket.UpdateItem)
		basket.DELETE("/:id", ctl.Basket.DeleteItem)
		basket.POST("/checkout/:userId", checkoutLimit, ctl.Basket.Checkout)
	}

	wishlist := r.Group("/wishlist")
	{
		wishlist.POST("", ctl.Wishlist.Add)
		wishlist.GET("/user/:userId", ctl.Wishlist.GetUserWishlist)
		wishlist.DELETE("/:id", ctl.Wishlist.Delete)
	}

	orders := r.Group("/orders")
	{
		orders.GET("/:orderId", ctl.Orders.GetOrder)
		orders.GET("/user/:userId", ctl.Orders.GetUserOrders)
		orders.PUT("/:orderId/status", ctl.Orders.UpdateStatus)
		orders.DELETE("/:orderId/cancel", ctl.Orders.Cancel)
	}

	admin := r.Group("/admin", adminGuard)
	{
		admin.GET("/stats", ctl.Orders.Stats)
		admin.GET("/orders", ctl.Orders.ListOrders)
		admin.GET("/orders/stats", ctl.Orders.Stats)
		admin.GET("/orders/status/:status", ctl.Orders.ListByStatus)
		admin.GET("/orders/status/:status/count", ctl.Orders.CountByStatus)
	}
}
