package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	config "github.com/avatarctic/caller-crm/configs"
	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/infrastructure/redis"
	"github.com/avatarctic/caller-crm/internal/infrastructure/repositories"

	goredis "github.com/go-redis/redis/v8"
)

// RedisTestSuite runs against a real server named by REDIS_TEST_ADDR (host:port).
type RedisTestSuite struct {
	suite.Suite
	client *goredis.Client
	prefix string
}

func (s *RedisTestSuite) SetupSuite() {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		s.T().Skip("REDIS_TEST_ADDR not set")
	}
	host, port := addr, "6379"
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host, port = addr[:i], addr[i+1:]
			break
		}
	}
	client, err := redis.NewRedisClient(context.Background(), &config.RedisConfig{
		Host:        host,
		Port:        port,
		PoolSize:    2,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
	s.Require().NoError(err)
	s.client = client
	s.prefix = "test:" + uuid.NewString()
}

func (s *RedisTestSuite) TearDownSuite() {
	if s.client == nil {
		return
	}
	keys, _ := s.client.Keys(context.Background(), s.prefix+"*").Result()
	if len(keys) > 0 {
		s.client.Del(context.Background(), keys...)
	}
	_ = s.client.Close()
}

func (s *RedisTestSuite) TestSnapshotStoreRoundTrip() {
	ctx := context.Background()
	store := redis.NewSnapshotStore(s.client, s.prefix)

	_, ok, err := store.Get(ctx, "missing")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(store.Set(ctx, "k", []byte(`{"id":"C1"}`), time.Minute))
	val, ok, err := store.Get(ctx, "k")
	s.Require().NoError(err)
	s.True(ok)
	s.JSONEq(`{"id":"C1"}`, string(val))

	s.Require().NoError(store.Delete(ctx, "k"))
	_, ok, _ = store.Get(ctx, "k")
	s.False(ok)
}

func (s *RedisTestSuite) TestQueryCacheHydratesFromRedis() {
	ctx := context.Background()
	store := redis.NewSnapshotStore(s.client, s.prefix)
	key := query.NewKey("customers", "V1")

	warm := query.New(query.Options{Persister: store, SnapshotTTL: time.Minute})
	_, st := query.Get(ctx, warm, key, func(ctx context.Context) ([]string, error) { return []string{"Sarah Wilson"}, nil })
	s.Require().NoError(st.Err)

	cold := query.New(query.Options{Persister: store})
	got, _ := query.Get(ctx, cold, key, func(ctx context.Context) ([]string, error) { return nil, context.DeadlineExceeded })
	s.Equal([]string{"Sarah Wilson"}, got)
}

func (s *RedisTestSuite) TestRateLimitWindowCounts() {
	ctx := context.Background()
	repo := repositories.NewRateLimitRedisRepository(s.client)

	first, start, err := repo.IncrementWindow(ctx, "V1", time.Hour, s.prefix, 2*time.Hour)
	s.Require().NoError(err)
	second, _, err := repo.IncrementWindow(ctx, "V1", time.Hour, s.prefix, 2*time.Hour)
	s.Require().NoError(err)
	s.Equal(first+1, second)
	s.Equal(start, time.Now().Truncate(time.Hour))
}

func TestRedisTestSuite(t *testing.T) {
	suite.Run(t, new(RedisTestSuite))
}
