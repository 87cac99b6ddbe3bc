package repository

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"gorm.io/gorm"
)

type BasketItemRepository interface {
	Create(ctx context.Context, item *models.BasketItem) error
	FindByID(ctx context.Context, id uint) (*models.BasketItem, error)
	FindAll(ctx context.Context) ([]models.BasketItem, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.BasketItem, error)
	Update(ctx context.Context, item *models.BasketItem) error
	Delete(ctx context.Context, id uint) error
	// DeleteByIDs removes exactly the given lines; lines added after they
	// were read are kept.
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type GormBasketItemRepository struct {
	db *gorm.DB
}

func NewGormBasketItemRepository(db *gorm.DB) *GormBasketItemRepository {
	return &GormBasketItemRepository{db: db}
}

func (r *GormBasketItemRepository) Create(ctx context.Context, item *models.BasketItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormBasketItemRepository) FindByID(ctx context.Context, id uint) (*models.BasketItem, error) {
	var item models.BasketItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormBasketItemRepository) FindAll(ctx context.Context) ([]models.BasketItem, error) {
	var items []models.BasketItem
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}

func (r *GormBasketItemRepository) FindByUserID(ctx context.Context, userID uint) ([]models.BasketItem, error) {
	var items []models.BasketItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, err
}

func (r *GormBasketItemRepository) Update(ctx context.Context, item *models.BasketItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *GormBasketItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.BasketItem{}, id).Error
}

func (r *GormBasketItemRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.BasketItem{}).Error
}
