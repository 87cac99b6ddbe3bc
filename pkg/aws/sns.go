package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// RoutingKeyAttribute carries the event routing key on every SNS message so
// queue subscriptions can filter on it.
const RoutingKeyAttribute = "routing_key"

// SNSPublisher is the publishing half of SNSClient.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte, attributes map[string]string) error
}

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// Publish sends a raw message to the topic with string message attributes.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte, attributes map[string]string) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}

	attrs := make(map[string]types.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		attrs[k] = types.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          sdkaws.String(topicArn),
		Message:           sdkaws.String(string(message)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}

// EnsureTopic creates the topic if needed and returns its ARN. CreateTopic is
// idempotent on name.
func (s *SNSClient) EnsureTopic(ctx context.Context, name string) (string, error) {
	out, err := s.client.CreateTopic(ctx, &sns.CreateTopicInput{Name: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	return sdkaws.ToString(out.TopicArn), nil
}

// SubscribeQueue subscribes an SQS queue to a topic, filtered on the routing key.
func (s *SNSClient) SubscribeQueue(ctx context.Context, topicArn, queueArn, routingKey string) error {
	attrs := map[string]string{}
	if routingKey != "" && routingKey != "#" {
		attrs["FilterPolicy"] = fmt.Sprintf(`{%q:[%q]}`, RoutingKeyAttribute, routingKey)
	}
	_, err := s.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn:   sdkaws.String(topicArn),
		Protocol:   sdkaws.String("sqs"),
		Endpoint:   sdkaws.String(queueArn),
		Attributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe %s to %s: %w", queueArn, topicArn, err)
	}
	return nil
}
