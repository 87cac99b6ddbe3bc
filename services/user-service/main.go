package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/database"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/routes"
	"github.com/doguaydn/microservices-e-commerce/services/user-service/services"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "user-service"

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
	db, err := database.Connect(cfg.Postgres, logger, &models.User{})
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

	tokens := auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL)
	userService := services.NewUserService(
		repository.NewGormUserRepository(db),
		services.NewCaches(store, platform.CacheOptions()...),
		bus,
		tokens,
		logger,
	)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("Failed to create admin user", zap.Error(err))
		}
	}

	limiter := middleware.NewRateLimiter(rate.Limit(float64(cfg.LoginRatePerMinute)/60), cfg.LoginRatePerMinute, 10*time.Minute)
	go limiter.RunSweeper(ctx)

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	routes.RegisterUserRoutes(r,
		controllers.NewUserController(userService),
		auth.RequireRole(tokens, auth.RoleAdmin),
		middleware.RateLimit(limiter, nil),
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
