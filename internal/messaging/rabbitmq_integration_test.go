package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"firstlook/internal/models"

	"github.com/docker/docker/client"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// recordingHandler hands every task to the test and waits for a verdict.
type recordingHandler struct {
	received chan models.GenerationTaskPayload
	verdicts chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		received: make(chan models.GenerationTaskPayload, 10),
		verdicts: make(chan error, 10),
	}
}

func (h *recordingHandler) HandleGenerationTask(ctx context.Context, payload models.GenerationTaskPayload) error {
	h.received <- payload
	select {
	case err := <-h.verdicts:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RabbitMQIntegrationSuite runs the publisher and consumer against a real broker.
type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	conn      *amqp.Connection
	admin     *amqp.Channel
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = rabbitmq.Run(s.ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start rabbitmq container")

	url, err := s.container.AmqpURL(s.ctx)
	require.NoError(s.T(), err)

	s.conn, err = Connect(s.ctx, url, 5, time.Second, zap.NewNop())
	require.NoError(s.T(), err)
	s.admin, err = s.conn.Channel()
	require.NoError(s.T(), err)
	require.NoError(s.T(), DeclareTopology(s.admin))
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.T().Logf("Failed to terminate rabbitmq container: %v", err)
		}
	}
}

func (s *RabbitMQIntegrationSuite) SetupTest() {
	_, err := s.admin.QueuePurge(GenerationQueue, false)
	require.NoError(s.T(), err)
	_, err = s.admin.QueuePurge(dlqName, false)
	require.NoError(s.T(), err)
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not reachable: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RabbitMQIntegrationSuite))
}

// startConsumer runs a consumer on its own channel until the returned stop is called.
func (s *RabbitMQIntegrationSuite) startConsumer(handler TaskHandler) (stop func()) {
	ch, err := s.conn.Channel()
	require.NoError(s.T(), err)

	ctx, cancel := context.WithCancel(s.ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := NewGenerationConsumer(ch, handler, zap.NewNop()).Run(ctx); err != nil {
			s.T().Logf("consumer stopped: %v", err)
		}
	}()
	return func() {
		cancel()
		wg.Wait()
		ch.Close()
	}
}

func (s *RabbitMQIntegrationSuite) publisher() *TaskPublisher {
	ch, err := s.conn.Channel()
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { ch.Close() })
	p, err := NewTaskPublisher(ch, zap.NewNop())
	require.NoError(s.T(), err)
	return p
}

func (s *RabbitMQIntegrationSuite) readyMessages() int {
	q, err := s.admin.QueueDeclarePassive(GenerationQueue, true, false, false, false, nil)
	require.NoError(s.T(), err)
	return q.Messages
}

func (s *RabbitMQIntegrationSuite) awaitTask(h *recordingHandler) models.GenerationTaskPayload {
	select {
	case p := <-h.received:
		return p
	case <-time.After(10 * time.Second):
		s.T().Fatal("timed out waiting for a generation task")
		return models.GenerationTaskPayload{}
	}
}

func (s *RabbitMQIntegrationSuite) TestRoundTripOneAtATime() {
	t := s.T()
	handler := newRecordingHandler()
	stop := s.startConsumer(handler)
	defer stop()

	pub := s.publisher()
	require.NoError(t, pub.PublishGenerationTask(s.ctx, models.GenerationTaskPayload{TaskID: "t1", RequestedBy: "admin"}))
	require.NoError(t, pub.PublishGenerationTask(s.ctx, models.GenerationTaskPayload{TaskID: "t2", RequestedBy: "admin", SeedTitle: "Moonlit Vows"}))

	first := s.awaitTask(handler)
	assert.Equal(t, "t1", first.TaskID)
	// Prefetch 1 keeps the second task on the broker while the first is unacked.
	assert.Eventually(t, func() bool { return s.readyMessages() == 1 }, 5*time.Second, 100*time.Millisecond)
	handler.verdicts <- nil

	second := s.awaitTask(handler)
	assert.Equal(t, "t2", second.TaskID)
	assert.Equal(t, "Moonlit Vows", second.SeedTitle)
	handler.verdicts <- nil

	assert.Eventually(t, func() bool { return s.readyMessages() == 0 }, 5*time.Second, 100*time.Millisecond)
}

func (s *RabbitMQIntegrationSuite) TestFailedTaskIsDeadLettered() {
	t := s.T()
	handler := newRecordingHandler()
	stop := s.startConsumer(handler)
	defer stop()

	require.NoError(t, s.publisher().PublishGenerationTask(s.ctx, models.GenerationTaskPayload{TaskID: "doomed", RequestedBy: "admin"}))
	s.awaitTask(handler)
	handler.verdicts <- errors.New("firestore unavailable")

	var dead amqp.Delivery
	require.Eventually(t, func() bool {
		msg, ok, err := s.admin.Get(dlqName, true)
		if err != nil || !ok {
			return false
		}
		dead = msg
		return true
	}, 5*time.Second, 100*time.Millisecond)

	var payload models.GenerationTaskPayload
	require.NoError(t, json.Unmarshal(dead.Body, &payload))
	assert.Equal(t, "doomed", payload.TaskID)
	assert.Equal(t, "doomed", dead.MessageId)
}

func (s *RabbitMQIntegrationSuite) TestMalformedMessageIsDeadLettered() {
	t := s.T()
	handler := newRecordingHandler()
	stop := s.startConsumer(handler)
	defer stop()

	err := s.admin.PublishWithContext(s.ctx, "", GenerationQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        []byte("{broken"),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msg, ok, err := s.admin.Get(dlqName, true)
		return err == nil && ok && string(msg.Body) == "{broken"
	}, 5*time.Second, 100*time.Millisecond)
	assert.Empty(t, handler.received)
}
