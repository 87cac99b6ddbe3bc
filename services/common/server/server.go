// Package server holds the process plumbing shared by every service main:
// AWS clients, logging, the gin engine, cache backend selection and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/services/common/config"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/common/logger"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Platform struct {
	Name    string
	Logger  *zap.Logger
	Metrics *awspkg.MetricsClient
	AWS     sdkaws.Config
	Secrets *awspkg.SecretsClient
}

// Bootstrap loads AWS config and builds the logger and metrics client.
func Bootstrap(ctx context.Context, name string, svc config.Service) (*Platform, error) {
	awsCfg, err := awspkg.LoadConfig(ctx, svc.AWS)
	if err != nil {
		return nil, err
	}

	var sink io.Writer
	if svc.CloudWatchEnabled {
		cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, svc.CloudWatchLogGroup, name, true)
		if err != nil {
			return nil, err
		}
		sink = cw
	}

	return &Platform{
		Name:    name,
		Logger:  logger.Must(svc.Env, name, sink),
		Metrics: awspkg.NewMetricsClient(awsCfg, svc.CloudWatchNamespace, svc.CloudWatchEnabled),
		AWS:     awsCfg,
		Secrets: awspkg.NewSecretsClient(awsCfg),
	}, nil
}

// ResolvePostgres applies the Secrets Manager override when enabled.
func (p *Platform) ResolvePostgres(ctx context.Context, svc config.Service, pg *config.Postgres) error {
	if !svc.UseSecrets {
		return nil
	}
	if err := config.ApplyPostgresSecret(ctx, p.Secrets, pg); err != nil {
		return fmt.Errorf("failed to read database secret: %w", err)
	}
	return nil
}

// CacheStore picks the cache backend. The returned closer releases the
// Redis connection, if any.
func (p *Platform) CacheStore(ctx context.Context, cfg config.Cache) (cache.Store, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return cache.NewMemoryStore(), func() {}, nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		p.Logger.Info("Connected to Redis")
		return cache.NewRedisStore(client, p.Name), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// CacheOptions wires the logger and hit/miss metrics into typed caches.
func (p *Platform) CacheOptions() []cache.Option {
	return []cache.Option{
		cache.WithLogger(p.Logger),
		cache.WithObserver(cache.NewMetricsObserver(p.Metrics, p.Name)),
	}
}

// NewRouter returns a gin engine with the standard middleware chain and a
// /health endpoint.
func NewRouter(name string, lg *zap.Logger, metrics *awspkg.MetricsClient, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(lg),
		middleware.Metrics(metrics, name),
		middleware.SecurityHeaders(),
		middleware.Timeout(requestTimeout),
		apperrors.ErrorMiddleware(),
	)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": name})
	})
	return r
}

// Run serves until SIGINT/SIGTERM or parent cancellation, then shuts the
// server down and runs cleanup in order.
func Run(parent context.Context, srv *http.Server, lg *zap.Logger, shutdownTimeout time.Duration, cleanup ...func()) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	lg.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	for _, fn := range cleanup {
		fn()
	}
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	lg.Info("Server exited cleanly")
	_ = lg.Sync()
	return nil
}
