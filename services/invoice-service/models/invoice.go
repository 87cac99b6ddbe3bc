package models

import (
	"fmt"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StatusCreated = "CREATED"

type Invoice struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	InvoiceSlug string             `gorm:"type:varchar(64);uniqueIndex;not null" json:"invoiceSlug"`
	OrderID     string             `gorm:"type:varchar(36);index;not null" json:"orderId"`
	UserID      uint               `gorm:"not null;index" json:"userId"`
	Email       string             `json:"email"`
	Items       []events.OrderItem `gorm:"type:text;serializer:json" json:"items"`
	TotalAmount decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Status      string             `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Normalize pins the total and line prices to cents.
func (inv *Invoice) Normalize() {
	inv.TotalAmount = events.Money(inv.TotalAmount)
	inv.Items = events.NormalizeItems(inv.Items)
}

func NormalizeInvoices(invoices []Invoice) []Invoice {
	if invoices == nil {
		return nil
	}
	out := make([]Invoice, len(invoices))
	for i, inv := range invoices {
		inv.Normalize()
		out[i] = inv
	}
	return out
}

// NewSlug returns INV-<unix millis>-<8 hex chars>.
func NewSlug(now time.Time) string {
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

type Stats struct {
	TotalInvoices int64           `json:"totalInvoices"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}
