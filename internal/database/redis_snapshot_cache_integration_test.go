package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type snapshotFixture struct {
	Total  int            `json:"total"`
	Genres map[string]int `json:"genres"`
}

// RedisCacheIntegrationSuite runs RedisSnapshotCache against a real Redis.
type RedisCacheIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcredis.RedisContainer
	client    *redis.Client
	cache     *RedisSnapshotCache
}

func (s *RedisCacheIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.container.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client, err = NewRedisClient(s.ctx, fmt.Sprintf("%s:%s", host, port.Port()), "", 0, 3, time.Second, zap.NewNop())
	require.NoError(s.T(), err, "Failed to connect to test redis")
	s.cache = NewRedisSnapshotCache(s.client, zap.NewNop())
}

func (s *RedisCacheIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.T().Logf("Failed to terminate redis container: %v", err)
		}
	}
}

func (s *RedisCacheIntegrationSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")
}

func TestRedisCacheIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	requireDocker(t)
	suite.Run(t, new(RedisCacheIntegrationSuite))
}

func (s *RedisCacheIntegrationSuite) TestSetThenGet() {
	t := s.T()
	want := snapshotFixture{Total: 3, Genres: map[string]int{"royal": 2, "sports": 1}}

	require.NoError(t, s.cache.Set(s.ctx, "analytics:metrics", want, time.Minute))

	var got snapshotFixture
	found, err := s.cache.Get(s.ctx, "analytics:metrics", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	ttl, err := s.client.TTL(s.ctx, snapshotKeyPrefix+"analytics:metrics").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func (s *RedisCacheIntegrationSuite) TestGetMissing() {
	var got snapshotFixture
	found, err := s.cache.Get(s.ctx, "analytics:metrics", &got)
	require.NoError(s.T(), err)
	assert.False(s.T(), found)
}

func (s *RedisCacheIntegrationSuite) TestUndecodableSnapshotIsDropped() {
	t := s.T()
	key := snapshotKeyPrefix + "analytics:duplicates"
	require.NoError(t, s.client.Set(s.ctx, key, "{not json", 0).Err())

	var got []snapshotFixture
	found, err := s.cache.Get(s.ctx, "analytics:duplicates", &got)
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := s.client.Exists(s.ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func (s *RedisCacheIntegrationSuite) TestDelete() {
	t := s.T()
	require.NoError(t, s.cache.Set(s.ctx, "analytics:metrics", snapshotFixture{Total: 1}, time.Minute))
	require.NoError(t, s.cache.Set(s.ctx, "analytics:duplicates", []snapshotFixture{}, time.Minute))

	require.NoError(t, s.cache.Delete(s.ctx, "analytics:metrics", "analytics:duplicates"))
	require.NoError(t, s.cache.Delete(s.ctx))

	exists, err := s.client.Exists(s.ctx, snapshotKeyPrefix+"analytics:metrics", snapshotKeyPrefix+"analytics:duplicates").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
