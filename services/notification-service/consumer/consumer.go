// Package consumer binds the notification service to its three queues.
package consumer

import (
	"context"
	"fmt"

	"github.com/doguaydn/microservices-e-commerce/pkg/eventbus"
	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/notification-service/services"
)

// handle decodes the payload into T before calling fn.
func handle[T any](fn func(context.Context, T) error) eventbus.Handler {
	return func(ctx context.Context, msg eventbus.Message) error {
		evt, err := events.Decode[T](msg.Body)
		if err != nil {
			return apperrors.Serialization(fmt.Sprintf("%s payload rejected", msg.RoutingKey), err)
		}
		return fn(ctx, evt)
	}
}

// Start subscribes to user.registered, order.created and invoice.created.
// Each queue is consumed independently.
func Start(ctx context.Context, sub eventbus.Subscriber, svc services.NotificationService) error {
	subscriptions := []struct {
		binding eventbus.Binding
		handler eventbus.Handler
	}{
		{events.NotifyOnUserRegistered, handle(svc.UserRegistered)},
		{events.NotifyOnOrderCreated, handle(svc.OrderCreated)},
		{events.NotifyOnInvoiceCreated, handle(svc.InvoiceCreated)},
	}
	for _, s := range subscriptions {
		if err := sub.Subscribe(ctx, s.binding, s.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", s.binding.Queue, err)
		}
	}
	return nil
}
