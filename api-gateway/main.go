package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/doguaydn/microservices-e-commerce/api-gateway/proxy"
	"github.com/doguaydn/microservices-e-commerce/api-gateway/routes"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"github.com/gin-contrib/cors"
	"go.uber.org/zap"
)

const serviceName = "api-gateway"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	platform, err := server.Bootstrap(ctx, serviceName, cfg.Service)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	logger := platform.Logger

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterAllRoutes(r,
		proxy.NewForwarder(cfg.UpstreamTimeout, logger),
		routes.Upstreams{
			Basket:       cfg.BasketServiceURL,
			Stock:        cfg.StockServiceURL,
			User:         cfg.UserServiceURL,
			Invoice:      cfg.InvoiceServiceURL,
			Notification: cfg.NotificationServiceURL,
		},
		auth.RequireRole(auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL), auth.RoleAdmin),
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	logger.Info("API gateway routes registered", zap.Strings("origins", cfg.AllowOrigins))
	if err := server.Run(ctx, srv, logger, cfg.ShutdownTimeout, cancel); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}
