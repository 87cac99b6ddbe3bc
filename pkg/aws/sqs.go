package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSMessage is a received message with the fields consumers care about.
type SQSMessage struct {
	ID           string
	Body         string
	ReceiveCount int
}

// MessageHandler processes one SQS message. A nil return deletes the message;
// an error leaves it to reappear after the visibility timeout.
type MessageHandler func(ctx context.Context, msg SQSMessage) error

// SQSConsumer long-polls a single queue.
type SQSConsumer struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
}

func NewSQSConsumer(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		logger:   logger,
	}
}

// StartPolling runs until ctx is cancelled.
func (c *SQSConsumer) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("sqs polling started", zap.String("queue_url", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("sqs polling stopped", zap.String("queue_url", c.queueURL))
			return ctx.Err()
		default:
			if err := c.pollOnce(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("sqs poll failed", zap.String("queue_url", c.queueURL), zap.Error(err))
			}
		}
	}
}

func (c *SQSConsumer) pollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   30,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, m := range result.Messages {
		if m.Body == nil {
			continue
		}
		msg := SQSMessage{
			ID:   sdkaws.ToString(m.MessageId),
			Body: *m.Body,
		}
		if n, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
			msg.ReceiveCount = n
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Warn("sqs message left for redelivery", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &c.queueURL,
			ReceiptHandle: m.ReceiptHandle,
		}); err != nil {
			c.logger.Error("sqs delete failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
	return nil
}

// EnsureQueue creates the queue if needed and returns its URL and ARN.
func EnsureQueue(ctx context.Context, cfg sdkaws.Config, queueName string) (string, string, error) {
	client := sqs.NewFromConfig(cfg)
	created, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: &queueName})
	if err != nil {
		return "", "", fmt.Errorf("failed to create queue %s: %w", queueName, err)
	}
	url := sdkaws.ToString(created.QueueUrl)

	attrs, err := client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       &url,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to read queue arn for %s: %w", queueName, err)
	}
	return url, attrs.Attributes[string(types.QueueAttributeNameQueueArn)], nil
}
