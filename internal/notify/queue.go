package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// QueueClient is the subset of the RabbitMQ client used for publishing.
type QueueClient interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// QueuePublisher enqueues notifications as JSON for the worker service.
type QueuePublisher struct {
	client QueueClient
}

// NewQueuePublisher creates a RabbitMQ backed publisher
func NewQueuePublisher(client QueueClient) *QueuePublisher {
	return &QueuePublisher{client: client}
}

// Publish implements Publisher
func (p *QueuePublisher) Publish(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
