package routes

import (
	"github.com/doguaydn/microservices-e-commerce/api-gateway/proxy"
	"github.com/gin-gonic/gin"
)

// Upstreams are the base URLs of the backing services.
type Upstreams struct {
	Basket       string
	Stock        string
	User         string
	Invoice      string
	Notification string
}

func RegisterAllRoutes(r *gin.Engine, f *proxy.Forwarder, up Upstreams, adminGuard gin.HandlerFunc) {
	public := map[string]string{
		"/basket-items": up.Basket + "/basket-items",
		"/wishlist":     up.Basket + "/wishlist",
		"/orders":       up.Basket + "/orders",
		"/products":     up.Stock + "/products",
		"/users":        up.User + "/users",
		"/invoices":     up.Invoice + "/invoices",
	}
	for prefix, target := range public {
		h := f.To(target)
		r.Any(prefix, h)
		r.Any(prefix+"/*any", h)
	}

	// Each service keeps its own /admin tree; the gateway namespaces them.
	admin := r.Group("/admin", adminGuard)
	{
		admin.Any("/basket/*any", f.To(up.Basket+"/admin"))
		admin.Any("/stock/*any", f.To(up.Stock+"/admin"))
		admin.Any("/users/*any", f.To(up.User+"/admin"))
		admin.Any("/invoices/*any", f.To(up.Invoice+"/admin"))
		admin.GET("/notifications", f.To(up.Notification+"/admin/notifications"))
	}
}
