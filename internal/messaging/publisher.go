package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firstlook/internal/interfaces"
	"firstlook/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ interfaces.GenerationTaskPublisher = (*TaskPublisher)(nil)

const (
	publishTimeout  = 10 * time.Second
	publishAttempts = 3
	appID           = "firstlook-api"
)

// channelPublisher is the part of *amqp.Channel the publisher needs.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// TaskPublisher sends generation tasks to the generation queue.
type TaskPublisher struct {
	channel   channelPublisher
	queueName string
	logger    *zap.Logger
}

// NewTaskPublisher declares the queue topology on ch and returns a publisher for it.
func NewTaskPublisher(ch *amqp.Channel, logger *zap.Logger) (*TaskPublisher, error) {
	if err := DeclareTopology(ch); err != nil {
		return nil, err
	}
	return newTaskPublisher(ch, GenerationQueue, logger), nil
}

func newTaskPublisher(ch channelPublisher, queueName string, logger *zap.Logger) *TaskPublisher {
	return &TaskPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("TaskPublisher"),
	}
}

func (p *TaskPublisher) PublishGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal generation task: %w", err)
	}
	if err := p.publish(ctx, payload.TaskID, body); err != nil {
		tasksPublished.WithLabelValues("error").Inc()
		return err
	}
	tasksPublished.WithLabelValues("success").Inc()
	return nil
}

func (p *TaskPublisher) publish(ctx context.Context, messageID string, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        appID,
		})
		if err == nil {
			p.logger.Debug("Message published", zap.String("queue", p.queueName), zap.String("messageID", messageID), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish failed", zap.String("queue", p.queueName), zap.Int("attempt", attempt), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: failed to publish to %s: %v", models.ErrExternalService, p.queueName, err)
}
