package services

import (
	"context"
	"errors"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/repository"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type WishlistService interface {
	Add(ctx context.Context, userID, productID uint) (*models.WishlistItem, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.WishlistItem, error)
	Delete(ctx context.Context, id uint) error
}

type wishlistService struct {
	repo   repository.WishlistRepository
	caches Caches
	logger *zap.Logger
}

func NewWishlistService(repo repository.WishlistRepository, caches Caches, logger *zap.Logger) WishlistService {
	return &wishlistService{repo: repo, caches: caches, logger: logger}
}

var errAlreadyWishlisted = apperrors.Conflict("Product already in wishlist")

func (s *wishlistService) Add(ctx context.Context, userID, productID uint) (*models.WishlistItem, error) {
	_, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err == nil {
		return nil, errAlreadyWishlisted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check wishlist", err)
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyWishlisted
		}
		return nil, apperrors.Internal("failed to add to wishlist", err)
	}
	invalidate(ctx, s.logger, evictKey(s.caches.WishlistByUser, key(userID)))
	return item, nil
}

func (s *wishlistService) GetByUserID(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items, err := s.caches.WishlistByUser.GetOrLoad(ctx, key(userID), func(ctx context.Context) ([]models.WishlistItem, error) {
		return s.repo.FindByUserID(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.Internal("failed to load wishlist", err)
	}
	return items, nil
}

func (s *wishlistService) Delete(ctx context.Context, id uint) error {
	item, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Wishlist item not found with id: %d", id)
	}
	if err != nil {
		return apperrors.Internal("failed to load wishlist item", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal("failed to delete wishlist item", err)
	}
	invalidate(ctx, s.logger, evictKey(s.caches.WishlistByUser, key(item.UserID)))
	return nil
}
