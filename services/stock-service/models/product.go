package models

import (
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;check:quantity >= 0" json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Normalize pins the price to cents.
func (p *Product) Normalize() { p.Price = events.Money(p.Price) }

func NormalizeProducts(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	for i, p := range products {
		p.Normalize()
		out[i] = p
	}
	return out
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"gte=0"`
}

type ReduceStockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type Stats struct {
	TotalProducts int `json:"totalProducts"`
	LowStockCount int `json:"lowStockCount"`
}
