package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"firstlook/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// TaskHandler processes one generation task. A returned error dead-letters
// the message.
type TaskHandler interface {
	HandleGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error
}

// GenerationConsumer reads the generation queue one message at a time.
type GenerationConsumer struct {
	channel *amqp.Channel
	handler TaskHandler
	logger  *zap.Logger
}

func NewGenerationConsumer(ch *amqp.Channel, handler TaskHandler, logger *zap.Logger) *GenerationConsumer {
	return &GenerationConsumer{
		channel: ch,
		handler: handler,
		logger:  logger.Named("GenerationConsumer"),
	}
}

// Run blocks until ctx is cancelled or the delivery channel closes.
func (c *GenerationConsumer) Run(ctx context.Context) error {
	if err := DeclareTopology(c.channel); err != nil {
		return err
	}
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	msgs, err := c.channel.Consume(GenerationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Waiting for generation tasks", zap.String("queue", GenerationQueue))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer stopping", zap.Error(ctx.Err()))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, msg)
		}
	}
}

func (c *GenerationConsumer) process(ctx context.Context, msg amqp.Delivery) {
	tasksReceived.Inc()

	var payload models.GenerationTaskPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.Error("Failed to decode task, dropping", zap.String("messageID", msg.MessageId), zap.Error(err))
		tasksFailed.WithLabelValues("deserialization").Inc()
		_ = msg.Nack(false, false)
		return
	}

	logFields := []zap.Field{zap.String("taskID", payload.TaskID), zap.String("requestedBy", payload.RequestedBy)}
	if err := c.handler.HandleGenerationTask(ctx, payload); err != nil {
		c.logger.Error("Task failed, sending to dead letter queue", append(logFields, zap.Error(err))...)
		tasksFailed.WithLabelValues("handler").Inc()
		_ = msg.Nack(false, false)
		return
	}

	c.logger.Info("Task processed", logFields...)
	tasksSucceeded.Inc()
	_ = msg.Ack(false)
}
