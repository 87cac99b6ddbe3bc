package main

import (
	"context"
	"log"
	"net/http"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/database"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/consumer"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/routes"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/sender"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/services"
	"go.uber.org/zap"
)

const serviceName = "notification-service"

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
	db, err := database.Connect(cfg.Postgres, logger, &models.NotificationLog{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	var email sender.EmailSender
	if cfg.SMTP.Host != "" {
		email, err = sender.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logger.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
	} else {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		email = sender.NewLogSender(logger)
	}

	notificationService, err := services.NewNotificationService(
		repository.NewGormNotificationRepository(db),
		email,
		platform.Metrics,
		logger,
		services.WithBackoff(cfg.RetryBackoff),
	)
	if err != nil {
		logger.Fatal("Failed to initialize notification service", zap.Error(err))
	}

	bus, err := eventbus.Open(ctx, cfg.Bus, cfg.AWS, logger, platform.Metrics)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", zap.Error(err))
	}
	if err := consumer.Start(ctx, bus, notificationService); err != nil {
		logger.Fatal("Failed to subscribe", zap.Error(err))
	}

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	routes.RegisterRoutes(r,
		controllers.NewNotificationController(notificationService),
		auth.RequireRole(auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL), auth.RoleAdmin),
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	if err := server.Run(ctx, srv, logger, cfg.ShutdownTimeout,
		cancel,
		func() { _ = bus.Close() },
		func() { _ = database.Close(db) },
	); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}
