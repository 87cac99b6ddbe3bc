package repository

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	// Totals returns the order count and the sum of every order total.
	Totals(ctx context.Context) (int64, decimal.Decimal, error)
	// UpdateStatus moves orderID from one status to another and reports
	// false when the order was no longer in status from.
	UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *GormOrderRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var n int64
	var revenue decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*), COALESCE(SUM(total_amount), 0)").
		Row().Scan(&n, &revenue)
	return n, revenue, err
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
