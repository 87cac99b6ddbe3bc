// Package events defines the payloads exchanged between services and the
// exchanges, routing keys and queues they travel on. Payloads are flat and
// denormalized so consumers never call back to the producer.
package events

import (
	"time"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/shopspring/decimal"
)

const (
	OrderExchange   = "order.exchange"
	InvoiceExchange = "invoice.exchange"
	UserExchange    = "user.exchange"

	OrderCreatedKey   = "order.created"
	InvoiceCreatedKey = "invoice.created"
	UserRegisteredKey = "user.registered"
)

var (
	InvoiceOnOrderCreated = eventbus.Binding{
		Queue:      "invoice.order.created.queue",
		Exchange:   OrderExchange,
		RoutingKey: OrderCreatedKey,
	}
	NotifyOnOrderCreated = eventbus.Binding{
		Queue:      "notification.order.created.queue",
		Exchange:   OrderExchange,
		RoutingKey: OrderCreatedKey,
	}
	NotifyOnInvoiceCreated = eventbus.Binding{
		Queue:      "notification.invoice.created.queue",
		Exchange:   InvoiceExchange,
		RoutingKey: InvoiceCreatedKey,
	}
	NotifyOnUserRegistered = eventbus.Binding{
		Queue:      "notification.user.registered.queue",
		Exchange:   UserExchange,
		RoutingKey: UserRegisteredKey,
	}
)

type OrderItem struct {
	ProductID   uint            `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
}

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId" validate:"required"`
	UserID      uint            `json:"userId" validate:"required"`
	Email       string          `json:"email"`
	Items       []OrderItem     `json:"items" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"gte=0"`
	Timestamp   time.Time       `json:"timestamp"`
}

type InvoiceCreatedEvent struct {
	InvoiceID   uint            `json:"invoiceId" validate:"required"`
	OrderID     string          `json:"orderId" validate:"required"`
	UserID      uint            `json:"userId" validate:"required"`
	Email       string          `json:"email"`
	TotalAmount decimal.Decimal `json:"totalAmount" validate:"gte=0"`
	Items       []OrderItem     `json:"items" validate:"dive"`
	InvoiceSlug string          `json:"invoiceSlug" validate:"required"`
	Timestamp   time.Time       `json:"timestamp"`
}

type UserRegisteredEvent struct {
	UserID    uint      `json:"userId" validate:"required"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}
