package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/clients"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/controllers"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/repository"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/routes"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	"github.com/doguaydn/microservices-e-commerce/services/common/auth"
	"github.com/doguaydn/microservices-e-commerce/services/common/database"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"github.com/doguaydn/microservices-e-commerce/services/common/server"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "basket-service"

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
	db, err := database.Connect(cfg.Postgres, logger, &models.BasketItem{}, &models.WishlistItem{}, &models.Order{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	store, closeCache, err := platform.CacheStore(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to set up cache", zap.Error(err))
	}
	caches := services.NewCaches(store, platform.CacheOptions()...)

	bus, err := eventbus.Open(ctx, cfg.Bus, cfg.AWS, logger, platform.Metrics)
	if err != nil {
		logger.Fatal("Failed to connect to event bus", zap.Error(err))
	}

	stock := clients.NewStockClient(cfg.StockServiceURL, cfg.ClientTimeout, logger)
	identity := clients.NewIdentityClient(cfg.UserServiceURL, cfg.ClientTimeout, logger)

	basketRepo := repository.NewGormBasketItemRepository(db)
	orderService := services.NewOrderService(repository.NewGormOrderRepository(db), caches, logger)

	var checkoutOpts []services.CheckoutOption
	if cfg.SerializeCheckout {
		checkoutOpts = append(checkoutOpts, services.SerializePerUser())
	}
	checkoutService := services.NewCheckoutService(basketRepo, orderService, stock, identity, bus, caches,
		platform.Metrics, logger, checkoutOpts...)

	limiter := middleware.NewRateLimiter(rate.Limit(float64(cfg.CheckoutRatePerMinute)/60), cfg.CheckoutRatePerMinute, 10*time.Minute)
	go limiter.RunSweeper(ctx)

	r := server.NewRouter(serviceName, logger, platform.Metrics, cfg.RequestTimeout)
	routes.RegisterRoutes(r, routes.Controllers{
		Basket:   controllers.NewBasketController(services.NewBasketService(basketRepo, stock, identity, caches, logger), checkoutService),
		Wishlist: controllers.NewWishlistController(services.NewWishlistService(repository.NewGormWishlistRepository(db), caches, logger)),
		Orders:   controllers.NewOrderController(orderService),
	},
		auth.RequireRole(auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL), auth.RoleAdmin),
		routes.CheckoutLimit(limiter),
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
