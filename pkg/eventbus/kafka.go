package eventbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	headerRoutingKey = "routing-key"
	headerMessageID  = "message-id"
)

// KafkaBus uses one topic per exchange and one consumer group per queue.
// The routing key travels in a header and is matched on the consumer side.
type KafkaBus struct {
	dispatcher

	brokers []string
	writer  *kafka.Writer

	mu      sync.Mutex
	readers []*kafka.Reader
}

func NewKafkaBus(brokers []string, logger *zap.Logger, metrics *awspkg.MetricsClient) *KafkaBus {
	return &KafkaBus{
		dispatcher: dispatcher{logger: logger, metrics: metrics},
		brokers:    brokers,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (b *KafkaBus) Publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	msg := kafka.Message{
		Topic: exchange,
		Key:   []byte(routingKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: headerRoutingKey, Value: []byte(routingKey)},
			{Key: headerMessageID, Value: []byte(uuid.NewString())},
		},
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}
	return nil
}

func (b *KafkaBus) Subscribe(ctx context.Context, bind Binding, h Handler) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		GroupID:  bind.Queue,
		Topic:    bind.Exchange,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	b.mu.Lock()
	b.readers = append(b.readers, r)
	b.mu.Unlock()

	go b.consume(ctx, bind, r, h)
	b.logger.Info("subscribed", zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange), zap.String("routing_key", bind.RoutingKey))
	return nil
}

func (b *KafkaBus) consume(ctx context.Context, bind Binding, r *kafka.Reader, h Handler) {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return
			}
			b.logger.Error("kafka fetch failed", zap.String("queue", bind.Queue), zap.Error(err))
			continue
		}

		msg := Message{Exchange: m.Topic, Body: m.Value}
		for _, hdr := range m.Headers {
			switch hdr.Key {
			case headerRoutingKey:
				msg.RoutingKey = string(hdr.Value)
			case headerMessageID:
				msg.ID = string(hdr.Value)
			}
		}

		if MatchTopic(bind.RoutingKey, msg.RoutingKey) {
			b.deliver(ctx, bind, h, msg)
		}
		if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			b.logger.Warn("kafka commit failed", zap.String("queue", bind.Queue), zap.Error(err))
		}
	}
}

func (b *KafkaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for _, r := range b.readers {
		errs = append(errs, r.Close())
	}
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}
