package main

import (
	"context"
	"log"
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/database"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/consumer"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/routes"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/services"
	"go.uber.org/zap"
)

const serviceName = "invoice-service"

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

	if err := platform.ResolvePostgres(ctx, cfg.Service, &cfg.Postgres); err != nil {
		logger.Fatal("Failed to resolve database config", zap.Error(err))
	}
	db, err := database.Connect(cfg.Postgres, logger, &models.Invoice{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	store, closeCache, err := platform.CacheStore(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to set up cache", zap.Error(err))
	}

	bus, err := eventbus.Open(ctx, cfg.Bus, cfg.AWS, logger, platform.Metrics)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", zap.Error(err))
	}

	invoiceService := services.NewInvoiceService(
		repository.NewGormInvoiceRepository(db),
		services.NewCaches(store, platform.CacheOptions()...),
		bus,
		platform.Metrics,
		logger,
	)
	if err := consumer.Start(ctx, bus, invoiceService, logger); err != nil {
		logger.Fatal("Failed to subscribe", zap.Error(err))
	}

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	routes.RegisterInvoiceRoutes(r,
		controllers.NewInvoiceController(invoiceService),
		auth.RequireRole(auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL), auth.RoleAdmin),
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	if err := server.Run(ctx, srv, logger, cfg.ShutdownTimeout,
		cancel,
		func() { _ = bus.Close() },
		closeCache,
		func() { _ = database.Close(db) },
	); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}
