package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitBus maps exchanges to durable topic exchanges and queues to durable
// queues. Deliveries are acknowledged manually; a failed handler Nacks
// without requeue, which drops the message.
type RabbitBus struct {
	dispatcher

	conn *amqp.Connection

	pubMu    sync.Mutex
	pub      *amqp.Channel
	declared map[string]bool
}

// DialRabbit connects with retries; the broker is often still starting when
// services come up.
func DialRabbit(url string, logger *zap.Logger, metrics *awspkg.MetricsClient) (*RabbitBus, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 10; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("rabbitmq not reachable, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return &RabbitBus{
		dispatcher: dispatcher{logger: logger, metrics: metrics},
		conn:       conn,
		pub:        ch,
		declared:   make(map[string]bool),
	}, nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

func (b *RabbitBus) Publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	if b.conn.IsClosed() {
		return ErrClosed
	}
	if !b.declared[exchange] {
		if err := declareExchange(b.pub, exchange); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
		b.declared[exchange] = true
	}

	err := b.pub.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    uuid.NewString(),
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}
	return nil
}

func (b *RabbitBus) Subscribe(ctx context.Context, bind Binding, h Handler) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := declareExchange(ch, bind.Exchange); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", bind.Exchange, err)
	}
	if _, err := ch.QueueDeclare(bind.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare queue %s: %w", bind.Queue, err)
	}
	if err := ch.QueueBind(bind.Queue, bind.RoutingKey, bind.Exchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to bind queue %s: %w", bind.Queue, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(bind.Queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to consume %s: %w", bind.Queue, err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					b.logger.Warn("rabbitmq delivery channel closed", zap.String("queue", bind.Queue))
					return
				}
				msg := Message{
					ID:          d.MessageId,
					Exchange:    d.Exchange,
					RoutingKey:  d.RoutingKey,
					Body:        d.Body,
					Redelivered: d.Redelivered,
				}
				if b.deliver(ctx, bind, h, msg) {
					_ = d.Ack(false)
				} else {
					_ = d.Nack(false, false)
				}
			}
		}
	}()

	b.logger.Info("subscribed", zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange), zap.String("routing_key", bind.RoutingKey))
	return nil
}

func (b *RabbitBus) Close() error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	_ = b.pub.Close()
	return b.conn.Close()
}
