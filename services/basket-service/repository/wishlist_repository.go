package repository

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(ctx context.Context, item *models.WishlistItem) error
	FindByID(ctx context.Context, id uint) (*models.WishlistItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uint) (*models.WishlistItem, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.WishlistItem, error)
	Delete(ctx context.Context, id uint) error
}

type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

func (r *GormWishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormWishlistRepository) FindByID(ctx context.Context, id uint) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormWishlistRepository) FindByUserAndProduct(ctx context.Context, userID, productID uint) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormWishlistRepository) FindByUserID(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *GormWishlistRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.WishlistItem{}, id).Error
}
