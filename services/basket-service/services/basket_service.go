package services

import (
	"context"
	"errors"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/clients"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/repository"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BasketService interface {
	Add(ctx context.Context, req models.BasketItemRequest) (*models.BasketItem, error)
	Get(ctx context.Context, id uint) (*models.BasketItem, error)
	GetAll(ctx context.Context) ([]models.BasketItem, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.BasketItem, error)
	Update(ctx context.Context, id uint, req models.BasketItemRequest) (*models.BasketItem, error)
	Delete(ctx context.Context, id uint) error
}

type basketService struct {
	repo     repository.BasketItemRepository
	stock    clients.StockClient
	identity clients.IdentityClient
	caches   Caches
	logger   *zap.Logger
}

func NewBasketService(repo repository.BasketItemRepository, stock clients.StockClient, identity clients.IdentityClient, caches Caches, logger *zap.Logger) BasketService {
	return &basketService{repo: repo, stock: stock, identity: identity, caches: caches, logger: logger}
}

func basketItemNotFound(id uint) error {
	return apperrors.NotFound("Basket item not found with id: %d", id)
}

func (s *basketService) requireUser(ctx context.Context, userID uint) error {
	_, err := s.identity.GetUser(ctx, userID)
	return err
}

// requireStock checks the product exists and has at least qty available.
func (s *basketService) requireStock(ctx context.Context, productID uint, qty int) error {
	p, err := s.stock.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.Quantity < qty {
		return apperrors.Conflict("Insufficient stock. Available: %d, Requested: %d", p.Quantity, qty)
	}
	return nil
}

func (s *basketService) Add(ctx context.Context, req models.BasketItemRequest) (*models.BasketItem, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.BadRequest("quantity must be positive")
	}
	if err := s.requireUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	if err := s.requireStock(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	item := &models.BasketItem{UserID: req.UserID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperrors.Internal("failed to add basket item", err)
	}
	invalidate(ctx, s.logger, evictKey(s.caches.BasketByUser, key(item.UserID)))
	return item, nil
}

func (s *basketService) Get(ctx context.Context, id uint) (*models.BasketItem, error) {
	item, err := s.caches.BasketItem.GetOrLoad(ctx, key(id), func(ctx context.Context) (models.BasketItem, error) {
		item, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return models.BasketItem{}, err
		}
		return *item, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, basketItemNotFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load basket item", err)
	}
	return &item, nil
}

func (s *basketService) GetAll(ctx context.Context) ([]models.BasketItem, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list basket items", err)
	}
	return items, nil
}

func (s *basketService) GetByUserID(ctx context.Context, userID uint) ([]models.BasketItem, error) {
	items, err := s.caches.BasketByUser.GetOrLoad(ctx, key(userID), func(ctx context.Context) ([]models.BasketItem, error) {
		if err := s.requireUser(ctx, userID); err != nil {
			return nil, err
		}
		return s.repo.FindByUserID(ctx, userID)
	})
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Internal("failed to list basket", err)
	}
	return items, nil
}

func (s *basketService) Update(ctx context.Context, id uint, req models.BasketItemRequest) (*models.BasketItem, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.BadRequest("quantity must be positive")
	}
	if err := s.requireStock(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previousUser := item.UserID

	item.UserID = req.UserID
	item.ProductID = req.ProductID
	item.Quantity = req.Quantity
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apperrors.Internal("failed to update basket item", err)
	}
	invalidate(ctx, s.logger,
		putKey(s.caches.BasketItem, key(id), *item),
		evictKey(s.caches.BasketByUser, key(previousUser)),
		evictKey(s.caches.BasketByUser, key(item.UserID)),
	)
	return item, nil
}

func (s *basketService) Delete(ctx context.Context, id uint) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal("failed to delete basket item", err)
	}
	invalidate(ctx, s.logger,
		evictKey(s.caches.BasketItem, key(id)),
		evictKey(s.caches.BasketByUser, key(item.UserID)),
	)
	return nil
}

func (s *basketService) find(ctx context.Context, id uint) (*models.BasketItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, basketItemNotFound(id)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load basket item", err)
	}
	return item, nil
}
