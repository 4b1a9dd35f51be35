package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// GenerationQueue carries models.GenerationTaskPayload messages.
	GenerationQueue = "story_generation_tasks"

	dlxName       = "story_generation_tasks_dlx"
	dlqName       = "story_generation_tasks_dlq"
	dlqRoutingKey = "dlq"
)

// Connect dials RabbitMQ, retrying while the broker is still starting.
func Connect(ctx context.Context, url string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ", zap.Int("attempt", attempt))
			return conn, nil
		}
		lastErr = err
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", maxRetries, lastErr)
}

// DeclareTopology declares the generation queue together with its dead
// letter exchange and queue. Publisher and consumer both call it, so the
// arguments here must stay identical for both.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", dlxName, err)
	}
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
	}
	if err := ch.QueueBind(dlqName, dlqRoutingKey, dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", dlqName, dlxName, err)
	}

	args := amqp.Table{
		"x-queue-mode":              "lazy",
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": dlqRoutingKey,
	}
	if _, err := ch.QueueDeclare(GenerationQueue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", GenerationQueue, err)
	}
	return nil
}
