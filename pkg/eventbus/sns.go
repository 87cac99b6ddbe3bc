package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
	"go.uber.org/zap"
)

// SNSBus publishes to one SNS topic per exchange and consumes from one SQS
// queue per binding, subscribed to the topic with a routing-key filter.
type SNSBus struct {
	dispatcher

	cfg sdkaws.Config
	sns *awspkg.SNSClient

	mu     sync.Mutex
	topics map[string]string
}

func NewSNSBus(cfg sdkaws.Config, logger *zap.Logger, metrics *awspkg.MetricsClient) *SNSBus {
	return &SNSBus{
		dispatcher: dispatcher{logger: logger, metrics: metrics},
		cfg:        cfg,
		sns:        awspkg.NewSNSClient(cfg),
		topics:     make(map[string]string),
	}
}

// awsName maps dotted names onto the character set SNS and SQS accept.
func awsName(s string) string {
	return strings.ReplaceAll(s, ".", "-")
}

func (b *SNSBus) topicArn(ctx context.Context, exchange string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if arn, ok := b.topics[exchange]; ok {
		return arn, nil
	}
	arn, err := b.sns.EnsureTopic(ctx, awsName(exchange))
	if err != nil {
		return "", err
	}
	b.topics[exchange] = arn
	return arn, nil
}

func (b *SNSBus) Publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	arn, err := b.topicArn(ctx, exchange)
	if err != nil {
		return err
	}
	return b.sns.Publish(ctx, arn, payload, map[string]string{
		awspkg.RoutingKeyAttribute: routingKey,
		"exchange":                 exchange,
	})
}

type snsEnvelope struct {
	MessageID         string `json:"MessageId"`
	Message           string `json:"Message"`
	MessageAttributes map[string]struct {
		Type  string `json:"Type"`
		Value string `json:"Value"`
	} `json:"MessageAttributes"`
}

func (b *SNSBus) Subscribe(ctx context.Context, bind Binding, h Handler) error {
	arn, err := b.topicArn(ctx, bind.Exchange)
	if err != nil {
		return err
	}
	queueURL, queueArn, err := awspkg.EnsureQueue(ctx, b.cfg, awsName(bind.Queue))
	if err != nil {
		return err
	}
	if err := b.sns.SubscribeQueue(ctx, arn, queueArn, bind.RoutingKey); err != nil {
		return err
	}

	consumer := awspkg.NewSQSConsumer(b.cfg, queueURL, b.logger)
	go func() {
		_ = consumer.StartPolling(ctx, func(ctx context.Context, m awspkg.SQSMessage) error {
			msg, err := unwrapSNS(m)
			if err != nil {
				b.logger.Error("undecodable sns envelope, dropping", zap.String("queue", bind.Queue), zap.Error(err))
				return nil
			}
			msg.Exchange = bind.Exchange
			if MatchTopic(bind.RoutingKey, msg.RoutingKey) {
				b.deliver(ctx, bind, h, msg)
			}
			// handled or dropped; either way the message leaves the queue
			return nil
		})
	}()

	b.logger.Info("subscribed", zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange), zap.String("routing_key", bind.RoutingKey))
	return nil
}

func unwrapSNS(m awspkg.SQSMessage) (Message, error) {
	var env snsEnvelope
	if err := json.Unmarshal([]byte(m.Body), &env); err != nil {
		return Message{}, fmt.Errorf("decode envelope: %w", err)
	}
	msg := Message{
		ID:          env.MessageID,
		Body:        []byte(env.Message),
		Redelivered: m.ReceiveCount > 1,
	}
	if rk, ok := env.MessageAttributes[awspkg.RoutingKeyAttribute]; ok {
		msg.RoutingKey = rk.Value
	}
	return msg, nil
}

// Close is a no-op; consumers stop with their context.
func (b *SNSBus) Close() error { return nil }
