package repository

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	FindByOrderID(ctx context.Context, orderID string) ([]models.Invoice, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Invoice, error)
	FindAll(ctx context.Context) ([]models.Invoice, error)
	Totals(ctx context.Context) (int64, decimal.Decimal, error)
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByOrderID returns every invoice for the order. Redelivered events can
// leave more than one.
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&invoices).Error
	return invoices, err
}

func (r *GormInvoiceRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&invoices).Error
	return invoices, err
}

func (r *GormInvoiceRepository) FindAll(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).Order("id").Find(&invoices).Error
	return invoices, err
}

func (r *GormInvoiceRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var (
		n     int64
		total decimal.Decimal
	)
	row := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("COUNT(*), COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&n, &total); err != nil {
		return 0, decimal.Zero, err
	}
	return n, total, nil
}
