package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/shopspring/decimal"
)

// LineItems is the priced snapshot frozen into an order at checkout. It is
// stored as a JSON text column.
type LineItems []events.OrderItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *LineItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into LineItems", src)
	}
	return json.Unmarshal(raw, l)
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"orderId"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	Items       LineItems       `gorm:"type:text;not null" json:"items"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Normalize pins the total and line prices to cents, so an order decoded
// from the cache is identical to one read from the database.
func (o *Order) Normalize() {
	o.TotalAmount = events.Money(o.TotalAmount)
	o.Items = events.NormalizeItems(o.Items)
}

// NormalizeOrders applies Normalize to a copy of orders.
func NormalizeOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.Normalize()
		out[i] = o
	}
	return out
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderStats struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	ConfirmedOrders int64           `json:"confirmedOrders"`
	DeliveredOrders int64           `json:"deliveredOrders"`
	CancelledOrders int64           `json:"cancelledOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}
