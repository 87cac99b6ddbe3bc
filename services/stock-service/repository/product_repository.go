package repository

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/services/stock-service/models"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	FindLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
	// ReduceStock decrements quantity only when enough is available and
	// reports whether a row changed.
	ReduceStock(ctx context.Context, id uint, qty int) (bool, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("quantity < ?", threshold).Order("quantity").Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r *GormProductRepository) ReduceStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
