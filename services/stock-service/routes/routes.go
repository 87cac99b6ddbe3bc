package routes

import (
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/controllers"
	"github.com/gin-gonic/gin"
)

// RegisterProductRoutes mounts the catalogue and stock endpoints. adminGuard
// protects catalogue writes and the /admin group.
func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController, adminGuard gin.HandlerFunc) {
	products := r.Group("/products")
	{
		products.GET("", pc.GetProducts)
		products.GET("/:id", pc.GetProduct)
		products.PUT("/:id/reduce-stock", pc.ReduceStock)

		products.POST("", adminGuard, pc.CreateProduct)
		products.PUT("/:id", adminGuard, pc.UpdateProduct)
		products.DELETE("/:id", adminGuard, pc.DeleteProduct)
	}

	admin := r.Group("/admin", adminGuard)
	admin.GET("/stats", pc.Stats)
	admin.GET("/products/low-stock", pc.LowStock)
	admin.GET("/low-stock", pc.LowStock)
}
