package services

import (
	"context"
	"errors"
	"fmt"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/stock-service/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultLowStockThreshold = 5

type ProductService interface {
	Create(ctx context.Context, req models.ProductRequest) (*models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id uint, req models.ProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
	ReduceStock(ctx context.Context, id uint, qty int) (*models.Product, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Caches struct {
	Product *cache.Cache[models.Product]
	All     *cache.Cache[[]models.Product]
}

func NewCaches(store cache.Store, opts ...cache.Option) Caches {
	return Caches{
		Product: cache.New[models.Product](store, cache.Product, opts...),
		All:     cache.New[[]models.Product](store, cache.ProductsAll, opts...),
	}
}

type productService struct {
	repo    repository.ProductRepository
	caches  Caches
	metrics *awspkg.MetricsClient
	logger  *zap.Logger
}

func NewProductService(repo repository.ProductRepository, caches Caches, metrics *awspkg.MetricsClient, logger *zap.Logger) ProductService {
	return &productService{repo: repo, caches: caches, metrics: metrics, logger: logger}
}

func notFound(id uint) error {
	return apperrors.NotFound("Product not found with id: %d", id)
}

func validate(req models.ProductRequest) error {
	if req.Name == "" {
		return apperrors.BadRequest("name is required")
	}
	if req.Price.IsNegative() {
		return apperrors.BadRequest("price must not be negative")
	}
	if req.Quantity < 0 {
		return apperrors.BadRequest("quantity must not be negative")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal("failed to create product", err)
	}
	s.refresh(ctx, p)
	return p, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.caches.Product.GetOrLoad(ctx, fmt.Sprint(id), func(ctx context.Context) (models.Product, error) {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		return *p, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load product", err)
	}
	p.Normalize()
	return &p, nil
}

func (s *productService) GetAll(ctx context.Context) ([]models.Product, error) {
	products, err := s.caches.All.GetOrLoad(ctx, cache.AllKey, s.repo.FindAll)
	if err != nil {
		return nil, apperrors.Internal("failed to list products", err)
	}
	return models.NormalizeProducts(products), nil
}

func (s *productService) Update(ctx context.Context, id uint, req models.ProductRequest) (*models.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Quantity = req.Quantity
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperrors.Internal("failed to update product", err)
	}
	s.refresh(ctx, p)
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal("failed to delete product", err)
	}
	s.evict(ctx, s.caches.Product.Evict(ctx, fmt.Sprint(id)))
	s.evict(ctx, s.caches.All.EvictAll(ctx))
	return nil
}

// ReduceStock is a single conditional decrement, so concurrent callers can
// never drive quantity below zero.
func (s *productService) ReduceStock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, apperrors.BadRequest("quantity must be positive")
	}
	ok, err := s.repo.ReduceStock(ctx, id, qty)
	if err != nil {
		return nil, apperrors.Internal("failed to reduce stock", err)
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Conflict("Insufficient stock for product %d: available %d, requested %d", id, p.Quantity, qty)
	}

	s.refresh(ctx, p)
	s.metrics.CountAsync(awspkg.MetricStockReduced, map[string]string{"Service": "stock-service"})
	s.logger.Info("stock reduced", zap.Uint("product_id", id), zap.Int("quantity", qty), zap.Int("remaining", p.Quantity))
	return p, nil
}

func (s *productService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	products, err := s.repo.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, apperrors.Internal("failed to list low stock", err)
	}
	return products, nil
}

func (s *productService) Stats(ctx context.Context) (*models.Stats, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.LowStock(ctx, DefaultLowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &models.Stats{TotalProducts: len(all), LowStockCount: len(low)}, nil
}

func (s *productService) find(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load product", err)
	}
	return p, nil
}

// refresh replaces the product entry and drops the product list.
func (s *productService) refresh(ctx context.Context, p *models.Product) {
	s.evict(ctx, s.caches.Product.Put(ctx, fmt.Sprint(p.ID), *p))
	s.evict(ctx, s.caches.All.EvictAll(ctx))
}

func (s *productService) evict(_ context.Context, err error) {
	if err != nil {
		s.logger.Error("cache invalidation failed", zap.Error(err))
	}
}
