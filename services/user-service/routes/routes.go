package routes

import (
	"github.com/doguaydn/microservices-e-commerce/services/user-service/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(r *gin.Engine, uc *controllers.UserController, adminGuard gin.HandlerFunc, loginLimit gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.POST("/login", loginLimit, uc.Login)
		users.GET("", uc.GetUsers)
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id", uc.UpdateUser)
		users.DELETE("/:id", adminGuard, uc.DeleteUser)
	}

	admin := r.Group("/admin", adminGuard)
	admin.GET("/stats", uc.Stats)
}
