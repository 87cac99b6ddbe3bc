// Package consumer turns bus deliveries into invoice-service calls.
package consumer

import (
	"context"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/invoice-service/services"
	"go.uber.org/zap"
)

// OrderCreated returns the handler bound to invoice.order.created.queue. A
// returned error makes the bus log and drop the message.
func OrderCreated(svc services.InvoiceService, logger *zap.Logger) eventbus.Handler {
	return func(ctx context.Context, msg eventbus.Message) error {
		evt, err := events.Decode[events.OrderCreatedEvent](msg.Body)
		if err != nil {
			return apperrors.Serialization("order created payload rejected", err)
		}
		if msg.Redelivered {
			logger.Warn("order created event redelivered, creating another invoice",
				zap.String("order_id", evt.OrderID), zap.String("message_id", msg.ID))
		}
		_, err = svc.CreateFromOrder(ctx, evt)
		return err
	}
}

// Start subscribes every invoice-service consumer.
func Start(ctx context.Context, sub eventbus.Subscriber, svc services.InvoiceService, logger *zap.Logger) error {
	return sub.Subscribe(ctx, events.InvoiceOnOrderCreated, OrderCreated(svc, logger))
}
