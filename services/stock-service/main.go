package main

import (
	"context"
	"log"
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/database"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/routes"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/services"
	"go.uber.org/zap"
)

const serviceName = "stock-service"

func main() {
	ctx := context.Background()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	platform, err := server.Bootstrap(ctx, serviceName, cfg.Service)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	logger := platform.Logger

	if err := platform.ResolvePostgres(ctx, cfg.Service, &cfg.Postgres); err != nil {
		logger.Fatal("Failed to resolve database config", zap.Error(err))
	}
	db, err := database.Connect(cfg.Postgres, logger, &models.Product{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	store, closeCache, err := platform.CacheStore(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to set up cache", zap.Error(err))
	}

	productService := services.NewProductService(
		repository.NewGormProductRepository(db),
		services.NewCaches(store, platform.CacheOptions()...),
		platform.Metrics,
		logger,
	)

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	adminGuard := auth.RequireRole(auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL), auth.RoleAdmin)
	routes.RegisterProductRoutes(r, controllers.NewProductController(productService), adminGuard)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	if err := server.Run(ctx, srv, logger, cfg.ShutdownTimeout,
		closeCache,
		func() { _ = database.Close(db) },
	); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}
