package routes

import (
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, nc *controllers.NotificationController, adminGuard gin.HandlerFunc) {
	admin := r.Group("/admin", adminGuard)
	{
		admin.GET("/notifications", nc.GetNotificationLogs)
	}
}
