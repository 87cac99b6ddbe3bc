// Package eventbus is a topic-exchange publish/subscribe abstraction with
// at-least-once delivery. A handler error is logged and the message dropped;
// there is no retry and no dead-letter queue.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"go.uber.org/zap"
)

var (
	ErrClosed = errors.New("eventbus: closed")
	ErrEncode = errors.New("eventbus: encode payload")
)

// Message is one delivery. Redelivered is set when the broker knows the
// message was handed out before; handlers must tolerate duplicates either way.
type Message struct {
	ID          string
	Exchange    string
	RoutingKey  string
	Body        []byte
	Redelivered bool
}

type Handler func(ctx context.Context, msg Message) error

// Binding attaches a named queue to an exchange. RoutingKey may use the
// topic wildcards "*" (one word) and "#" (zero or more words).
type Binding struct {
	Queue      string
	Exchange   string
	RoutingKey string
}

type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload []byte) error
}

type Subscriber interface {
	// Subscribe declares the binding and starts consuming in the background
	// until ctx is cancelled or the bus is closed.
	Subscribe(ctx context.Context, b Binding, h Handler) error
}

type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// PublishJSON encodes v and publishes it.
func PublishJSON(ctx context.Context, p Publisher, exchange, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return p.Publish(ctx, exchange, routingKey, body)
}

type dispatcher struct {
	logger  *zap.Logger
	metrics *awspkg.MetricsClient
}

// deliver runs h and reports whether it succeeded. Failures and panics are
// logged and counted, never propagated.
func (d dispatcher) deliver(ctx context.Context, b Binding, h Handler, msg Message) (ok bool) {
	fields := []zap.Field{
		zap.String("queue", b.Queue),
		zap.String("exchange", msg.Exchange),
		zap.String("routing_key", msg.RoutingKey),
		zap.String("message_id", msg.ID),
		zap.Bool("redelivered", msg.Redelivered),
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked, message dropped", append(fields, zap.Any("panic", r))...)
			d.metrics.CountAsync(awspkg.MetricEventsDropped, map[string]string{"Queue": b.Queue})
			ok = false
		}
	}()

	if err := h(ctx, msg); err != nil {
		d.logger.Error("event handler failed, message dropped", append(fields, zap.Error(err))...)
		d.metrics.CountAsync(awspkg.MetricEventsDropped, map[string]string{"Queue": b.Queue})
		return false
	}
	return true
}
