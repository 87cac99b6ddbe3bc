package routes

import (
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterInvoiceRoutes(r *gin.Engine, ic *controllers.InvoiceController, adminGuard gin.HandlerFunc) {
	invoices := r.Group("/invoices")
	{
		invoices.GET("/:id", ic.GetInvoice)
		invoices.GET("/order/:orderId", ic.GetOrderInvoices)
		invoices.GET("/user/:userId", ic.GetUserInvoices)
	}

	admin := r.Group("/admin", adminGuard)
	{
		admin.GET("/invoices", ic.GetAllInvoices)
		admin.GET("/stats", ic.Stats)
	}
}
